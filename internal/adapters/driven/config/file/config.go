package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// Config is the resolved prsync configuration.
type Config struct {
	Sync     SyncConfig
	GitHub   GitHubConfig
	Database domain.DatabaseProfile
	Schedule domain.ScheduleConfig
	Log      LogConfig
}

// SyncConfig selects what a run synchronises.
type SyncConfig struct {
	LoadType domain.LoadType
	// Repos is the raw value, normalised with domain.ParseRepos when a run starts.
	Repos     any
	ReposSep  string
	Period    time.Duration
	BatchSize int
}

// GitHubConfig is the API connection profile.
type GitHubConfig struct {
	BaseURL           string
	Credentials       domain.APICredentials
	Profile           string
	RequestsPerSecond float64
	Timeout           time.Duration
	PerPage           int
}

// LogConfig configures the logger.
type LogConfig struct {
	Format  string
	Verbose bool
}

// DefaultDSN is the SQLite database used when none is configured.
const DefaultDSN = "prsync.db"

// DefaultEnvFile is loaded into the environment, when present, before
// environment overrides are applied.
const DefaultEnvFile = ".env"

// envKeys maps environment variables to configuration keys.
var envKeys = []struct {
	env string
	key string
}{
	{"PRSYNC_LOAD_TYPE", "sync.load_type"},
	{"PRSYNC_REPOS", "sync.repos"},
	{"PRSYNC_REPOS_SEP", "sync.repos_sep"},
	{"PRSYNC_PERIOD", "sync.period"},
	{"PRSYNC_GITHUB_BASE_URL", "github.base_url"},
	{"PRSYNC_GITHUB_PROFILE", "github.profile"},
	{"GITHUB_TOKEN", "github.token"},
	{"GITHUB_LOGIN", "github.login"},
	{"GITHUB_PASSWORD", "github.password"},
	{"PRSYNC_DATABASE_DRIVER", "database.driver"},
	{"DATABASE_URL", "database.dsn"},
	{"PRSYNC_DATABASE_DSN", "database.dsn"},
	{"PRSYNC_SCHEDULE_EVERY", "schedule.every"},
	{"PRSYNC_LOG_FORMAT", "log.format"},
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Sync: SyncConfig{
			LoadType: domain.LoadIncremental,
			ReposSep: domain.DefaultReposSeparator,
			Period:   domain.DefaultPeriod,
		},
		GitHub: GitHubConfig{
			Timeout: 30 * time.Second,
			PerPage: 100,
		},
		Database: domain.DatabaseProfile{Driver: domain.DriverSQLite, DSN: DefaultDSN},
		Schedule: domain.DefaultScheduleConfig(),
		Log:      LogConfig{Format: "text"},
	}
}

// Load reads the TOML file at path, overlaid with the environment.
// An optional .env file in the working directory is loaded first; it
// never overrides variables that are already set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}

	store, err := NewConfigStore(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(store, os.LookupEnv)
	return FromStore(store)
}

// applyEnv copies set, non-empty environment variables over file values.
func applyEnv(store *ConfigStore, lookup func(string) (string, bool)) {
	for _, e := range envKeys {
		if v, ok := lookup(e.env); ok && v != "" {
			store.Set(e.key, v)
		}
	}
}

// FromStore resolves a Config from raw keys, applying defaults.
func FromStore(store *ConfigStore) (Config, error) {
	cfg := Default()
	var err error

	if lt := store.GetString("sync.load_type"); lt != "" {
		if cfg.Sync.LoadType, err = domain.ParseLoadType(lt); err != nil {
			return Config{}, err
		}
	}
	if repos, ok := store.Get("sync.repos"); ok {
		cfg.Sync.Repos = repos
	}
	if sep := store.GetString("sync.repos_sep"); sep != "" {
		cfg.Sync.ReposSep = sep
	}
	if cfg.Sync.Period, err = store.GetDuration("sync.period", cfg.Sync.Period); err != nil {
		return Config{}, err
	}
	if cfg.Sync.BatchSize, err = store.GetInt("sync.batch_size"); err != nil {
		return Config{}, err
	}

	cfg.GitHub.BaseURL = store.GetString("github.base_url")
	cfg.GitHub.Profile = store.GetString("github.profile")
	cfg.GitHub.Credentials = domain.APICredentials{
		Token:    store.GetString("github.token"),
		Login:    store.GetString("github.login"),
		Password: store.GetString("github.password"),
	}
	if cfg.GitHub.RequestsPerSecond, err = store.GetFloat("github.requests_per_second"); err != nil {
		return Config{}, err
	}
	if cfg.GitHub.Timeout, err = store.GetDuration("github.timeout", cfg.GitHub.Timeout); err != nil {
		return Config{}, err
	}
	perPage, err := store.GetInt("github.per_page")
	if err != nil {
		return Config{}, err
	}
	if perPage != 0 {
		cfg.GitHub.PerPage = perPage
	}

	if driver := store.GetString("database.driver"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dsn := store.GetString("database.dsn"); dsn != "" {
		cfg.Database.DSN = dsn
		if store.GetString("database.driver") == "" && isPostgresURL(dsn) {
			cfg.Database.Driver = domain.DriverPostgres
		}
	}

	if cfg.Schedule.Interval, err = store.GetDuration("schedule.every", cfg.Schedule.Interval); err != nil {
		return Config{}, err
	}
	if cfg.Schedule.RunOnStart, err = store.GetBool("schedule.run_on_start", cfg.Schedule.RunOnStart); err != nil {
		return Config{}, err
	}

	if format := store.GetString("log.format"); format != "" {
		cfg.Log.Format = format
	}
	if cfg.Log.Verbose, err = store.GetBool("log.verbose", false); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks values that do not depend on the command being run.
// Repositories are checked when a run starts, since some commands need none.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case domain.DriverSQLite, domain.DriverPostgres, domain.DriverMemory:
	default:
		return fmt.Errorf("%w: database driver %q", domain.ErrInvalidInput, c.Database.Driver)
	}
	if c.Database.Driver != domain.DriverMemory && c.Database.DSN == "" {
		return fmt.Errorf("%w: database dsn is required", domain.ErrInvalidInput)
	}
	if c.Sync.BatchSize < 0 {
		return fmt.Errorf("%w: negative sync batch size", domain.ErrInvalidInput)
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: negative github requests per second", domain.ErrInvalidInput)
	}
	return nil
}

// RunParams resolves the parameters of a run at reference time ref.
func (c Config) RunParams(ref time.Time) (domain.RunParams, error) {
	if c.Sync.Repos == nil {
		return domain.RunParams{}, fmt.Errorf("%w: sync.repos is not set", domain.ErrInvalidRepos)
	}
	repos, err := domain.ParseRepos(c.Sync.Repos, c.Sync.ReposSep)
	if err != nil {
		return domain.RunParams{}, err
	}
	params := domain.RunParams{
		LoadType:      c.Sync.LoadType,
		Repos:         repos,
		ReferenceTime: ref,
		Period:        c.Sync.Period,
	}
	return params, params.Validate()
}

func isPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
