package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/illarion/locknote/internal/logger"
	"github.com/illarion/locknote/internal/security"
)

const (
	RecordExt = ".enc"
	IndexFile = "index.json"
)

// FileStore keeps each record in <id>.enc and the index in index.json,
// all inside one data directory.
type FileStore struct {
	pv  *security.PathValidator
	log *logger.Logger
}

// NewFileStore opens dir as a file-backed store, creating it if needed.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	pv, err := security.New(dir)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FileStore{pv: pv, log: log}, nil
}

func (s *FileStore) Close() error {
	return s.pv.Close()
}

// Location returns the absolute data directory
func (s *FileStore) Location() string {
	return s.pv.Dir()
}

// Compact is a no-op: every write already replaces the whole file.
func (s *FileStore) Compact() error {
	return nil
}

func (s *FileStore) Read(ctx context.Context, id string) (string, error) {
	if err := ValidateRecordID(id); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := s.pv.ReadFileInRoot(id + RecordExt)
	if err != nil {
		if security.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return "", fmt.Errorf("failed to read record %s: %w", id, err)
	}
	return string(data), nil
}

func (s *FileStore) Write(ctx context.Context, id string, blob string) error {
	if err := ValidateRecordID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.pv.WriteFileAtomic(id+RecordExt, []byte(blob), 0600); err != nil {
		return fmt.Errorf("failed to write record %s: %w", id, err)
	}
	s.log.Debug().Str("id", id).Int("bytes", len(blob)).Msg("record written")
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateRecordID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.pv.RemoveInRoot(id + RecordExt); err != nil {
		if security.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

// List returns the IDs of all stored records, sorted
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := s.pv.ListInRoot(RecordExt)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(name, RecordExt)
		if ValidateRecordID(id) != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *FileStore) LoadIndex(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.pv.ReadFileInRoot(IndexFile)
	if err != nil {
		if security.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	index := &Index{}
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return index, nil
}

func (s *FileStore) SaveIndex(ctx context.Context, index *Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := s.pv.WriteFileAtomic(IndexFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}
