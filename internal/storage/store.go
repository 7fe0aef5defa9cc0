package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/logger"
)

const (
	MaxRecordIDLen = 128
	BoltFile       = "locknote.db"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrInvalidRecordID = errors.New("invalid record id")
	ErrNotInitialized  = errors.New("store not initialized")
)

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RecordStore persists one encoded blob per record ID.
//
// Read returns ErrRecordNotFound for an absent record and an empty string
// with a nil error for a record whose stored blob is empty. Write replaces
// the record atomically: concurrent readers observe the old blob or the new
// one, never a partial write.
type RecordStore interface {
	Read(ctx context.Context, id string) (string, error)
	Write(ctx context.Context, id string, blob string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// Backend is a RecordStore that also keeps the plaintext index.
type Backend interface {
	RecordStore
	LoadIndex(ctx context.Context) (*Index, error)
	SaveIndex(ctx context.Context, index *Index) error
	Location() string
	Compact() error
	Close() error
}

// ValidateRecordID rejects IDs that cannot safely name a record.
func ValidateRecordID(id string) error {
	if id == "" || len(id) > MaxRecordIDLen || !recordIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidRecordID, id)
	}
	return nil
}

// Open opens the backend selected by name inside dir.
func Open(dir, backend string, log *logger.Logger) (Backend, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch backend {
	case config.BackendFile:
		return NewFileStore(dir, log)
	case config.BackendBolt:
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return OpenBolt(filepath.Join(dir, BoltFile), log)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, backend)
	}
}
