package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrPathEscapes  = errors.New("path escapes data directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
)

const tempMarker = ".tmp-"

// PathValidator confines file operations to the data directory using
// os.Root, so a crafted record name can never reach outside it.
type PathValidator struct {
	root    *os.Root
	dirPath string
}

// New opens a PathValidator for dir, creating the directory (0700) if it
// does not exist yet.
func New(dir string) (*PathValidator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	return &PathValidator{
		root:    root,
		dirPath: absPath,
	}, nil
}

// Close releases the underlying os.Root.
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// Dir returns the absolute data directory path.
func (pv *PathValidator) Dir() string {
	return pv.dirPath
}

// ValidateAndNormalize validates a path relative to the data directory and
// returns it cleaned, with forward slashes. It rejects empty, absolute and
// escaping paths as well as reserved names (see filepath.IsLocal).
func (pv *PathValidator) ValidateAndNormalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(userPath) {
		if filepath.IsAbs(userPath) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	cleanPath := filepath.Clean(userPath)
	if !filepath.IsLocal(cleanPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, cleanPath)
	}

	relPath, err := filepath.Rel(pv.dirPath, filepath.Join(pv.dirPath, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return filepath.ToSlash(relPath), nil
}

func (pv *PathValidator) platformPath(path string) (string, error) {
	platformPath := filepath.FromSlash(path)
	if _, err := pv.ValidateAndNormalize(platformPath); err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return platformPath, nil
}

// ReadFileInRoot reads a file inside the data directory.
func (pv *PathValidator) ReadFileInRoot(path string) ([]byte, error) {
	platformPath, err := pv.platformPath(path)
	if err != nil {
		return nil, err
	}
	return pv.root.ReadFile(platformPath)
}

// RemoveInRoot removes a file inside the data directory.
func (pv *PathValidator) RemoveInRoot(path string) error {
	platformPath, err := pv.platformPath(path)
	if err != nil {
		return err
	}
	return pv.root.Remove(platformPath)
}

// WriteFileAtomic replaces path with data. The content is written to a
// temporary sibling, synced, and renamed over the target, so readers see
// either the old file or the new one, never a partial write.
func (pv *PathValidator) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	platformPath, err := pv.platformPath(path)
	if err != nil {
		return err
	}

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("failed to generate temp name: %w", err)
	}
	dir, base := filepath.Split(platformPath)
	tmpPath := filepath.Join(dir, "."+base+tempMarker+hex.EncodeToString(suffix))

	f, err := pv.root.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		pv.root.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		pv.root.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		pv.root.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := pv.root.Rename(tmpPath, platformPath); err != nil {
		pv.root.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// ListInRoot returns the sorted names of regular files in the data
// directory ending in suffix. Temporary files left by an interrupted
// WriteFileAtomic are skipped.
func (pv *PathValidator) ListInRoot(suffix string) ([]string, error) {
	dir, err := pv.root.Open(".")
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.Contains(name, tempMarker) {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsNotExist reports whether err means the file is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
