package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/logger"
	"github.com/illarion/locknote/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// memStore is a RecordStore whose writes can be made to fail.
type memStore struct {
	records  map[string]string
	writeErr error
	writes   int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]string{}}
}

func (m *memStore) Read(_ context.Context, id string) (string, error) {
	blob, ok := m.records[id]
	if !ok {
		return "", storage.ErrRecordNotFound
	}
	return blob, nil
}

func (m *memStore) Write(_ context.Context, id, blob string) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records[id] = blob
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *memStore) List(context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

func seal(t *testing.T, password, plaintext string) string {
	t.Helper()
	c := crypto.NewRecordCipher([]byte(password))
	defer c.Destroy()
	blob, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	return blob
}

func TestRecover_FileStore(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(ctx, "n1", seal(t, "old-pass", "shopping list")))

	current := crypto.NewRecordCipher([]byte("new-pass"))
	defer current.Destroy()

	plaintext, err := New(store, logger.Nop()).Recover(ctx, "n1", []byte("old-pass"), current)
	require.NoError(t, err)
	assert.Equal(t, "shopping list", plaintext)

	blob, err := store.Read(ctx, "n1")
	require.NoError(t, err)

	got, err := current.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, "shopping list", got)

	_, err = crypto.NewRecordCipher([]byte("old-pass")).Decrypt(blob)
	assert.ErrorIs(t, err, crypto.ErrAuthFailed, "old password must no longer open the record")
}

func TestRecover_EmptyPlaintext(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.records["n1"] = seal(t, "old-pass", "")

	current := crypto.NewRecordCipher([]byte("new-pass"))
	plaintext, err := New(store, nil).Recover(ctx, "n1", []byte("old-pass"), current)
	require.NoError(t, err)
	assert.Empty(t, plaintext)

	got, err := current.Decrypt(store.records["n1"])
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecover_WrongOldPassword(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	original := seal(t, "old-pass", "secret")
	store.records["n1"] = original

	current := crypto.NewRecordCipher([]byte("new-pass"))
	_, err := New(store, nil).Recover(ctx, "n1", []byte("guess"), current)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecoveryFailed)
	assert.ErrorIs(t, err, crypto.ErrAuthFailed)
	assert.Equal(t, original, store.records["n1"], "failed recovery must not touch the record")
	assert.Zero(t, store.writes)
}

func TestRecover_Failures(t *testing.T) {
	ctx := context.Background()
	current := crypto.NewRecordCipher([]byte("new-pass"))

	tests := []struct {
		name   string
		setup  func(*memStore)
		id     string
		oldPw  string
		cause  error
		cipher *crypto.RecordCipher
	}{
		{
			name:   "missing record",
			setup:  func(*memStore) {},
			id:     "absent",
			oldPw:  "old-pass",
			cause:  storage.ErrRecordNotFound,
			cipher: current,
		},
		{
			name:   "empty blob",
			setup:  func(m *memStore) { m.records["n1"] = "" },
			id:     "n1",
			oldPw:  "old-pass",
			cause:  crypto.ErrEmptyInput,
			cipher: current,
		},
		{
			name:   "garbage blob",
			setup:  func(m *memStore) { m.records["n1"] = "%%%" },
			id:     "n1",
			oldPw:  "old-pass",
			cause:  crypto.ErrMalformedEncoding,
			cipher: current,
		},
		{
			name:   "no old password",
			setup:  func(m *memStore) { m.records["n1"] = seal(t, "old-pass", "x") },
			id:     "n1",
			oldPw:  "",
			cause:  ErrOldPasswordRequired,
			cipher: current,
		},
		{
			name:   "no current cipher",
			setup:  func(m *memStore) { m.records["n1"] = seal(t, "old-pass", "x") },
			id:     "n1",
			oldPw:  "old-pass",
			cause:  ErrNoCurrentCipher,
			cipher: nil,
		},
		{
			name: "write fails",
			setup: func(m *memStore) {
				m.records["n1"] = seal(t, "old-pass", "x")
				m.writeErr = errDiskFull
			},
			id:     "n1",
			oldPw:  "old-pass",
			cause:  errDiskFull,
			cipher: current,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			tt.setup(store)

			plaintext, err := New(store, nil).Recover(ctx, tt.id, []byte(tt.oldPw), tt.cipher)
			assert.Empty(t, plaintext)
			assert.ErrorIs(t, err, ErrRecoveryFailed)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}
