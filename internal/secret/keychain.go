//go:build darwin

package secret

import (
	"emperror.dev/errors"
	"github.com/keybase/go-keychain"
)

// Store saves the secret for accessKeyID in the macOS Keychain, replacing any existing item.
func Store(accessKeyID, value string) error {
	if accessKeyID == "" {
		return errors.New("access key id is required")
	}

	item := keychain.NewItem()
	item.SetSecClass(keychain.SecClassGenericPassword)
	item.SetService(KeychainService)
	item.SetAccount(accessKeyID)
	item.SetLabel("Split Token Publisher AWS Secret")
	item.SetData([]byte(value))
	item.SetSynchronizable(keychain.SynchronizableNo)
	item.SetAccessible(keychain.AccessibleWhenUnlocked)

	// Remove existing if any
	keychain.DeleteItem(item)

	if err := keychain.AddItem(item); err != nil {
		return errors.WrapIf(err, "failed to save to keychain")
	}
	return nil
}

func keychainSecret(accessKeyID string) (string, error) {
	if accessKeyID == "" {
		return "", errors.New("access key id is required")
	}

	query := keychain.NewItem()
	query.SetSecClass(keychain.SecClassGenericPassword)
	query.SetService(KeychainService)
	query.SetAccount(accessKeyID)
	query.SetMatchLimit(keychain.MatchLimitOne)
	query.SetReturnData(true)

	results, err := keychain.QueryItem(query)
	if err != nil {
		return "", err
	} else if len(results) != 1 {
		return "", errors.New("secret not found in keychain")
	}

	return string(results[0].Data), nil
}
