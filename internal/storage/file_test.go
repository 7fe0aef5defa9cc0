package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestFileStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	require.NoError(t, s.Write(ctx, "note-1", "blob-one"))

	got, err := s.Read(ctx, "note-1")
	require.NoError(t, err)
	assert.Equal(t, "blob-one", got)

	raw, err := os.ReadFile(filepath.Join(dir, "note-1.enc"))
	require.NoError(t, err)
	assert.Equal(t, "blob-one", string(raw))

	require.NoError(t, s.Write(ctx, "note-1", "blob-two"))
	got, err = s.Read(ctx, "note-1")
	require.NoError(t, err)
	assert.Equal(t, "blob-two", got)
}

func TestFileStore_ReadMissing(t *testing.T) {
	s, _ := newTestFileStore(t)

	_, err := s.Read(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestFileStore_EmptyRecord(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank.enc"), nil, 0600))

	got, err := s.Read(ctx, "blank")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t)

	require.NoError(t, s.Write(ctx, "gone", "x"))
	require.NoError(t, s.Delete(ctx, "gone"))

	_, err := s.Read(ctx, "gone")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "gone"), ErrRecordNotFound)
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	require.NoError(t, s.Write(ctx, "b", "x"))
	require.NoError(t, s.Write(ctx, "a", "x"))
	require.NoError(t, s.SaveIndex(ctx, NewIndex()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad name.enc"), []byte("x"), 0600))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStore_RejectsInvalidID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t)

	for _, id := range []string{"", "../escape", "a/b", "with space"} {
		assert.ErrorIs(t, s.Write(ctx, id, "x"), ErrInvalidRecordID, id)
		_, err := s.Read(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidRecordID, id)
	}
}

func TestFileStore_Index(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	_, err := s.LoadIndex(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	index := NewIndex()
	index.Credential = "$2a$12$hash"
	index.AddNote(NoteEntry{ID: "n1", Title: "Groceries", Tags: []string{"home"}})
	require.NoError(t, s.SaveIndex(ctx, index))

	assert.FileExists(t, filepath.Join(dir, IndexFile))

	loaded, err := s.LoadIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$hash", loaded.Credential)
	require.Len(t, loaded.Notes, 1)
	assert.Equal(t, "Groceries", loaded.Notes[0].Title)
	assert.Equal(t, []string{"home"}, loaded.Notes[0].Tags)
}

func TestFileStore_CorruptIndex(t *testing.T) {
	s, dir := newTestFileStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("{not json"), 0600))

	_, err := s.LoadIndex(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotInitialized)
}

func TestFileStore_ConcurrentWritesStayWhole(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t)

	blobs := []string{"aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb", "cccccccccccccccc"}
	require.NoError(t, s.Write(ctx, "shared", blobs[0]))

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Write(ctx, "shared", blobs[i%len(blobs)]))
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Read(ctx, "shared")
			if assert.NoError(t, err) {
				assert.Contains(t, blobs, got)
			}
		}()
	}
	wg.Wait()

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, ids, "no temp files left behind")
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := Open(filepath.Join(dir, "files"), config.BackendFile, nil)
	require.NoError(t, err)
	defer fileStore.Close()
	assert.IsType(t, &FileStore{}, fileStore)

	boltStore, err := Open(filepath.Join(dir, "bolt"), config.BackendBolt, logger.Nop())
	require.NoError(t, err)
	defer boltStore.Close()
	assert.IsType(t, &BoltStore{}, boltStore)
	assert.FileExists(t, filepath.Join(dir, "bolt", BoltFile))

	_, err = Open(dir, "s3", nil)
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestValidateRecordID(t *testing.T) {
	valid := []string{"a", "note_1", "0b7c-41f2", "Z9"}
	for _, id := range valid {
		assert.NoError(t, ValidateRecordID(id), id)
	}

	long := make([]byte, MaxRecordIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	invalid := []string{"", "a.b", "../x", "a b", "é", string(long)}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateRecordID(id), ErrInvalidRecordID, id)
	}
}
