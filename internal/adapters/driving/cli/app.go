package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/prsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/prsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/prsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/prsync/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/prsync/internal/connectors/github"
	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
	"github.com/custodia-labs/prsync/internal/core/ports/driving"
	"github.com/custodia-labs/prsync/internal/core/services"
	"github.com/custodia-labs/prsync/internal/logger"
)

// Seams replaced in tests.
var (
	loadConfig = file.Load
	newApp     = buildApp
	now        = time.Now
)

// app holds the services the commands run against.
type app struct {
	orchestrator driving.SyncOrchestrator
	pipeline     driving.PipelineRunner
	runs         driven.RunStore

	// migrate brings the schema up to date and returns its version.
	migrate func(ctx context.Context) (int64, error)
	close   func() error
}

// loadSettings reads the configuration and applies it to the logger.
func loadSettings() (file.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return file.Config{}, fmt.Errorf("load config: %w", err)
	}

	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}
	f, err := logger.ParseFormat(format)
	if err != nil {
		return file.Config{}, err
	}
	logger.SetFormat(f)
	logger.SetVerbose(verbose || cfg.Log.Verbose)
	return cfg, nil
}

// buildApp wires the GitHub client and the configured store into the services.
func buildApp(ctx context.Context, cfg file.Config) (*app, error) {
	ghCfg := github.Config{
		BaseURL:           cfg.GitHub.BaseURL,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Timeout:           cfg.GitHub.Timeout,
		PerPage:           cfg.GitHub.PerPage,
	}
	if err := ghCfg.Validate(); err != nil {
		return nil, err
	}

	var creds driven.CredentialProvider = auth.NewStaticProvider(cfg.GitHub.Credentials)
	if cfg.GitHub.Profile != "" {
		creds = auth.NewProfileProvider(cfg.GitHub.Profile)
	}
	client := github.NewClient(creds, ghCfg)

	a := &app{}
	var syncStore driven.SyncStore
	switch cfg.Database.Driver {
	case domain.DriverMemory:
		logger.Warn("Using the memory store: nothing is persisted")
		syncStore = memory.NewSyncStore()
		a.runs = memory.NewRunStore()
		a.migrate = func(context.Context) (int64, error) { return 0, nil }
		a.close = func() error { return nil }
	default:
		store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		syncStore = store.SyncStore()
		a.runs = store.RunStore()
		a.migrate = func(ctx context.Context) (int64, error) {
			if err := store.Migrate(ctx); err != nil {
				return 0, err
			}
			return store.Version(ctx)
		}
		a.close = store.Close
	}

	orch := services.NewSyncOrchestrator(client, syncStore, services.WithFileBatchSize(cfg.Sync.BatchSize))
	a.orchestrator = orch
	a.pipeline = services.NewPipeline(orch, a.runs)
	return a, nil
}
