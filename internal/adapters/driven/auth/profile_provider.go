package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// Ensure ProfileProvider implements the CredentialProvider interface.
var _ driven.CredentialProvider = (*ProfileProvider)(nil)

// Profile file keys.
const (
	KeyToken    = "GITHUB_TOKEN"
	KeyLogin    = "GITHUB_LOGIN"
	KeyPassword = "GITHUB_PASSWORD"
)

// ProfileProvider reads credentials from a connection profile file in
// KEY=value (.env) format. The file is read on first use; a successful
// read is cached for the provider's lifetime, a failed one is retried.
type ProfileProvider struct {
	path string
	read func(path string) (map[string]string, error)

	mu    sync.Mutex
	creds *domain.APICredentials
}

// NewProfileProvider creates a provider for the profile file at path.
func NewProfileProvider(path string) *ProfileProvider {
	return &ProfileProvider{
		path: path,
		read: func(path string) (map[string]string, error) {
			return godotenv.Read(path)
		},
	}
}

// Credentials returns the profile's credentials.
func (p *ProfileProvider) Credentials(_ context.Context) (domain.APICredentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.creds != nil {
		return *p.creds, nil
	}

	values, err := p.read(p.path)
	if err != nil {
		return domain.APICredentials{}, fmt.Errorf("read connection profile %s: %w", p.path, err)
	}

	creds := domain.APICredentials{
		Token:    values[KeyToken],
		Login:    values[KeyLogin],
		Password: values[KeyPassword],
	}
	if !creds.IsAuthenticated() {
		return domain.APICredentials{}, fmt.Errorf("connection profile %s: %w", p.path, domain.ErrAuthRequired)
	}

	p.creds = &creds
	return creds, nil
}
