package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

func TestStaticProvider(t *testing.T) {
	tests := []struct {
		name    string
		creds   domain.APICredentials
		wantErr error
	}{
		{"token", domain.APICredentials{Token: "t"}, nil},
		{"basic", domain.APICredentials{Login: "octocat", Password: "p"}, nil},
		{"login without password", domain.APICredentials{Login: "octocat"}, domain.ErrAuthRequired},
		{"empty", domain.APICredentials{}, domain.ErrAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := NewStaticProvider(tt.creds).Credentials(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.creds, creds)
		})
	}
}

func TestProfileProvider_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github.env")
	require.NoError(t, os.WriteFile(path, []byte("# octo profile\nGITHUB_LOGIN=octocat\nGITHUB_PASSWORD=\"s3cret\"\n"), 0o600))

	creds, err := NewProfileProvider(path).Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.APICredentials{Login: "octocat", Password: "s3cret"}, creds)
}

func TestProfileProvider_CachesSuccess(t *testing.T) {
	calls := 0
	p := NewProfileProvider("profile.env")
	p.read = func(string) (map[string]string, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("not mounted yet")
		}
		return map[string]string{KeyToken: "t"}, nil
	}

	_, err := p.Credentials(context.Background())
	require.Error(t, err)

	for range 3 {
		creds, err := p.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "t", creds.Token)
	}
	assert.Equal(t, 2, calls)
}

func TestProfileProvider_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewProfileProvider(filepath.Join(t.TempDir(), "absent.env")).Credentials(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.env")
		require.NoError(t, os.WriteFile(path, []byte("OTHER=1\n"), 0o600))

		_, err := NewProfileProvider(path).Credentials(context.Background())
		assert.ErrorIs(t, err, domain.ErrAuthRequired)
	})
}
