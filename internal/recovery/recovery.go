// Package recovery migrates a record sealed under a stale password to the
// current one.
package recovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/logger"
	"github.com/illarion/locknote/internal/storage"
)

var (
	ErrRecoveryFailed      = errors.New("recovery failed")
	ErrOldPasswordRequired = errors.New("old password required")
	ErrNoCurrentCipher     = errors.New("no cipher for the current password")
)

// Protocol decrypts a record with an old password and rewrites it under
// the current cipher.
type Protocol struct {
	store storage.RecordStore
	log   *logger.Logger
}

func New(store storage.RecordStore, log *logger.Logger) *Protocol {
	if log == nil {
		log = logger.Nop()
	}
	return &Protocol{store: store, log: log.Module("recovery")}
}

// Recover opens record id with oldPassword, re-encrypts the plaintext with
// current and atomically replaces the stored blob. It returns the plaintext.
//
// Every failure wraps ErrRecoveryFailed together with its cause, so callers
// can match both the recovery failure and the underlying kind (for example
// crypto.ErrAuthFailed when the old password is wrong as well). On failure
// the stored blob is left untouched.
func (p *Protocol) Recover(ctx context.Context, id string, oldPassword []byte, current *crypto.RecordCipher) (string, error) {
	if len(oldPassword) == 0 {
		return "", failed(ErrOldPasswordRequired)
	}
	if current == nil {
		return "", failed(ErrNoCurrentCipher)
	}

	old := crypto.NewRecordCipher(oldPassword)
	defer old.Destroy()

	blob, err := p.store.Read(ctx, id)
	if err != nil {
		return "", failed(err)
	}

	plaintext, err := old.Decrypt(blob)
	if err != nil {
		p.log.Debug().Str("id", id).Err(err).Msg("old password did not open record")
		return "", failed(err)
	}

	fresh, err := current.Encrypt(plaintext)
	if err != nil {
		return "", failed(err)
	}

	if err := p.store.Write(ctx, id, fresh); err != nil {
		return "", failed(err)
	}

	p.log.Info().Str("id", id).Msg("record re-encrypted under current password")
	return plaintext, nil
}

func failed(cause error) error {
	return fmt.Errorf("%w: %w", ErrRecoveryFailed, cause)
}
