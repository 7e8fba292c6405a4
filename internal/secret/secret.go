// Package secret locates the AWS secret access key for the static-keys access method.
package secret

import (
	"os"

	"emperror.dev/errors"
)

const (
	// EnvSecret holds the secret access key when the config file leaves it empty.
	EnvSecret = "SPLIT_TOKEN_PUBLISHER_AWS_SECRET"

	KeychainService = "split-token-publisher"
)

// ErrNotFound is returned when no source yields a secret.
var ErrNotFound = errors.Sentinel("no AWS secret access key found")

// Resolve returns the secret for accessKeyID from one of three sources (in priority order):
// 1. Explicit value from the config file
// 2. Environment variable (SPLIT_TOKEN_PUBLISHER_AWS_SECRET)
// 3. System Keychain (macOS only), account = access key id
func Resolve(explicit, accessKeyID string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if env := os.Getenv(EnvSecret); env != "" {
		return env, nil
	}

	s, err := keychainSecret(accessKeyID)
	if err == nil && s != "" {
		return s, nil
	}

	return "", errors.WithStack(ErrNotFound)
}
