package driven

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// CredentialProvider resolves the API connection profile.
// The GitHub client calls it once, on first use.
type CredentialProvider interface {
	// Credentials returns the credentials to authenticate with.
	// Returns domain.ErrAuthRequired when none are configured.
	Credentials(ctx context.Context) (domain.APICredentials, error)
}
