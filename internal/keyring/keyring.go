// Package keyring caches the master password in the OS keyring, keyed by
// vault ID, so repeated commands do not prompt.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "locknote"

var ErrNotFound = errors.New("no password in keyring")

func account(vaultID string) string {
	return "vault:" + vaultID
}

// SavePassword stores a password in the OS keyring
func SavePassword(vaultID string, password []byte) error {
	if vaultID == "" {
		return fmt.Errorf("vault ID required")
	}
	if err := keyring.Set(serviceName, account(vaultID), string(password)); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(vaultID string) ([]byte, error) {
	pw, err := keyring.Get(serviceName, account(vaultID))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(pw), nil
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(vaultID string) error {
	err := keyring.Delete(serviceName, account(vaultID))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(vaultID string) bool {
	_, err := keyring.Get(serviceName, account(vaultID))
	return err == nil
}
