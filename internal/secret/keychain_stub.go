//go:build !darwin

package secret

import "emperror.dev/errors"

var errNoKeychain = errors.Sentinel("keychain integration is only supported on macOS")

// Store stub for non-macOS
func Store(accessKeyID, value string) error {
	return errors.WithStack(errNoKeychain)
}

func keychainSecret(accessKeyID string) (string, error) {
	return "", errors.WithStack(errNoKeychain)
}
