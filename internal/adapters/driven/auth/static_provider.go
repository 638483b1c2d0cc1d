package auth

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// Ensure StaticProvider implements the CredentialProvider interface.
var _ driven.CredentialProvider = (*StaticProvider)(nil)

// StaticProvider returns credentials fixed at construction, typically
// taken from the configuration file or environment.
type StaticProvider struct {
	creds domain.APICredentials
}

// NewStaticProvider creates a provider for fixed credentials.
func NewStaticProvider(creds domain.APICredentials) *StaticProvider {
	return &StaticProvider{creds: creds}
}

// Credentials returns the configured credentials, or domain.ErrAuthRequired
// when they hold neither a token nor a login/password pair.
func (p *StaticProvider) Credentials(_ context.Context) (domain.APICredentials, error) {
	if !p.creds.IsAuthenticated() {
		return domain.APICredentials{}, domain.ErrAuthRequired
	}
	return p.creds, nil
}
