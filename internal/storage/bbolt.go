package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/illarion/locknote/internal/logger"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // format version, timestamps - unencrypted
	RecordsBucket = []byte("records") // encoded blobs, one key per record ID
	IndexBucket   = []byte("index")   // JSON index under IndexKey - unencrypted
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	IndexKey       = []byte("index")
)

// BoltStore keeps records and the index in a single bbolt database.
type BoltStore struct {
	db  *bolt.DB
	log *logger.Logger
}

// OpenBolt opens or creates a locknote database and makes sure every
// bucket exists.
func OpenBolt(path string, log *logger.Logger) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &BoltStore{db: db, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, RecordsBucket, IndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Location returns the database file path
func (s *BoltStore) Location() string {
	return s.db.Path()
}

func (s *BoltStore) Read(ctx context.Context, id string) (string, error) {
	if err := ValidateRecordID(id); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var blob string
	err := s.db.View(func(tx *bolt.Tx) error {
		key := []byte(id)
		// Seek instead of Get so an empty value is not mistaken for a missing key.
		k, v := tx.Bucket(RecordsBucket).Cursor().Seek(key)
		if !bytes.Equal(k, key) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		blob = string(v)
		return nil
	})
	return blob, err
}

func (s *BoltStore) Write(ctx context.Context, id string, blob string) error {
	if err := ValidateRecordID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(RecordsBucket).Put([]byte(id), []byte(blob))
	})
	if err != nil {
		return fmt.Errorf("failed to store record %s: %w", id, err)
	}
	s.log.Debug().Str("id", id).Int("bytes", len(blob)).Msg("record stored")
	return nil
}

func (s *BoltStore) Delete(ctx context.Context, id string) error {
	if err := ValidateRecordID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		records := tx.Bucket(RecordsBucket)
		key := []byte(id)
		if k, _ := records.Cursor().Seek(key); !bytes.Equal(k, key) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return records.Delete(key)
	})
}

// List returns all record IDs in key order
func (s *BoltStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(RecordsBucket).ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	sort.Strings(ids)
	return ids, err
}

func (s *BoltStore) LoadIndex(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var index *Index
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(IndexBucket).Get(IndexKey)
		if data == nil {
			return ErrNotInitialized
		}
		index = &Index{}
		return json.Unmarshal(data, index)
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// SaveIndex stores the index and bumps the modified timestamp in one
// transaction.
func (s *BoltStore) SaveIndex(ctx context.Context, index *Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(IndexBucket).Put(IndexKey, data); err != nil {
			return err
		}
		modified, _ := time.Now().MarshalBinary()
		return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting notes to reclaim disk space.
func (s *BoltStore) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		os.Remove(tmpPath)
		return s.reopen(srcPath, fmt.Errorf("failed to backup original: %w", err))
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		os.Remove(tmpPath)
		return s.reopen(srcPath, fmt.Errorf("failed to replace database: %w", err))
	}
	os.Remove(backupPath)

	if err := s.reopen(srcPath, nil); err != nil {
		return err
	}

	s.log.Info().Str("path", srcPath).Msg("database compacted")
	return nil
}

// reopen opens the database at path again after Compact closed it, so the
// store stays usable when compaction fails half way. cause is returned
// unchanged when the reopen succeeds.
func (s *BoltStore) reopen(path string, cause error) error {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failed to reopen database: %w", err))
	}
	s.db = db
	return cause
}
