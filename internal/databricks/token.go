package databricks

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// keyringService is the service name under which tokens are stored in the
// OS keyring. The account is the workspace host so that tokens for multiple
// workspaces can coexist.
const keyringService = "starspread"

// ErrNoToken is returned when no token can be resolved for a host.
var ErrNoToken = errors.New("no databricks token found")

// TokenStore persists personal access tokens in the OS keyring.
type TokenStore struct{}

// SaveToken stores the token for the given workspace host.
func (TokenStore) SaveToken(host, token string) error {
	if err := keyring.Set(keyringService, host, token); err != nil {
		return fmt.Errorf("store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token for the host. Deleting a token that
// was never stored is not an error.
func (TokenStore) DeleteToken(host string) error {
	err := keyring.Delete(keyringService, host)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete token from keyring: %w", err)
	}
	return nil
}

// LookupToken returns the stored token for the host, or ErrNoToken.
func (TokenStore) LookupToken(host string) (string, error) {
	token, err := keyring.Get(keyringService, host)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read token from keyring: %w", err)
	}
	return token, nil
}

// ResolveToken picks the token to use, in order of precedence: the explicit
// value (a --token flag), the DATABRICKS_TOKEN environment variable, then
// the OS keyring entry for the host.
func ResolveToken(explicit, host string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv("DATABRICKS_TOKEN"); env != "" {
		return env, nil
	}
	token, err := TokenStore{}.LookupToken(host)
	if err != nil {
		return "", err
	}
	return token, nil
}
