package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/illarion/locknote/internal/logger"
)

func openTestBolt(t *testing.T) (*BoltStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenBolt(dbPath, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return db, dbPath
}

func TestOpenBolt_Initializes(t *testing.T) {
	db, dbPath := openTestBolt(t)
	defer db.Close()

	if db.Location() != dbPath {
		t.Errorf("Location mismatch: got %s, want %s", db.Location(), dbPath)
	}

	_, err := db.LoadIndex(context.Background())
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized for empty database, got %v", err)
	}
}

func TestBoltRecordStorage(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestBolt(t)
	defer db.Close()

	blob := "c2FsdG5vbmNlY2lwaGVydGV4dA=="
	if err := db.Write(ctx, "secret", blob); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	retrieved, err := db.Read(ctx, "secret")
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if retrieved != blob {
		t.Errorf("Data mismatch: got %q, want %q", retrieved, blob)
	}

	if err := db.Delete(ctx, "secret"); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	_, err = db.Read(ctx, "secret")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound for removed record, got %v", err)
	}

	if err := db.Delete(ctx, "secret"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound deleting twice, got %v", err)
	}
}

func TestBoltEmptyRecord(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestBolt(t)
	defer db.Close()

	if err := db.Write(ctx, "blank", ""); err != nil {
		t.Fatalf("Failed to store empty record: %v", err)
	}

	blob, err := db.Read(ctx, "blank")
	if err != nil {
		t.Fatalf("Empty record should read without error, got %v", err)
	}
	if blob != "" {
		t.Errorf("Expected empty blob, got %q", blob)
	}
}

func TestBoltList(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestBolt(t)
	defer db.Close()

	for _, id := range []string{"c", "a", "b"} {
		if err := db.Write(ctx, id, "x"); err != nil {
			t.Fatalf("Failed to store %s: %v", id, err)
		}
	}

	ids, err := db.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if fmt.Sprint(ids) != "[a b c]" {
		t.Errorf("List mismatch: got %v", ids)
	}
}

func TestBoltRejectsInvalidID(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestBolt(t)
	defer db.Close()

	for _, id := range []string{"", "../x", "a b", "a/b"} {
		if err := db.Write(ctx, id, "x"); !errors.Is(err, ErrInvalidRecordID) {
			t.Errorf("Write(%q): expected ErrInvalidRecordID, got %v", id, err)
		}
		if _, err := db.Read(ctx, id); !errors.Is(err, ErrInvalidRecordID) {
			t.Errorf("Read(%q): expected ErrInvalidRecordID, got %v", id, err)
		}
	}
}

func TestBoltIndex(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestBolt(t)
	defer db.Close()

	index := NewIndex()
	index.VaultID = "vault-1"
	index.AddNote(NoteEntry{ID: "n1", Title: "First"})
	index.Log("n1", "create")

	if err := db.SaveIndex(ctx, index); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}

	loaded, err := db.LoadIndex(ctx)
	if err != nil {
		t.Fatalf("Failed to load index: %v", err)
	}
	if loaded.VaultID != "vault-1" {
		t.Errorf("VaultID mismatch: got %s", loaded.VaultID)
	}
	if len(loaded.Notes) != 1 || loaded.Notes[0].Title != "First" {
		t.Errorf("Notes mismatch: got %+v", loaded.Notes)
	}
	if len(loaded.History) != 1 || loaded.History[0].Action != "create" {
		t.Errorf("History mismatch: got %+v", loaded.History)
	}
}

func TestBoltCanceledContext(t *testing.T) {
	db, _ := openTestBolt(t)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.Write(ctx, "n1", "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBoltCompact(t *testing.T) {
	ctx := context.Background()
	db, _ := openTestBolt(t)
	defer db.Close()

	for i := 0; i < 20; i++ {
		if err := db.Write(ctx, fmt.Sprintf("n%d", i), "payload"); err != nil {
			t.Fatalf("Failed to store record: %v", err)
		}
	}
	for i := 0; i < 19; i++ {
		if err := db.Delete(ctx, fmt.Sprintf("n%d", i)); err != nil {
			t.Fatalf("Failed to delete record: %v", err)
		}
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	blob, err := db.Read(ctx, "n19")
	if err != nil {
		t.Fatalf("Record lost after compaction: %v", err)
	}
	if blob != "payload" {
		t.Errorf("Data mismatch after compaction: got %q", blob)
	}
}

func TestBoltCompactFailureKeepsStoreUsable(t *testing.T) {
	ctx := context.Background()
	db, dbPath := openTestBolt(t)
	defer db.Close()

	if err := db.Write(ctx, "keep", "blob"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// A directory in the backup slot makes the first rename fail
	if err := os.MkdirAll(filepath.Join(dbPath+".backup", "occupied"), 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	if err := db.Compact(); err == nil {
		t.Fatal("Expected Compact to fail")
	}

	got, err := db.Read(ctx, "keep")
	if err != nil {
		t.Fatalf("Read after failed compact: %v", err)
	}
	if got != "blob" {
		t.Errorf("Expected blob, got %q", got)
	}
	if err := db.Write(ctx, "after", "x"); err != nil {
		t.Errorf("Write after failed compact: %v", err)
	}
	if _, err := os.Stat(dbPath + ".compact"); !os.IsNotExist(err) {
		t.Errorf("Expected temp database to be removed, got %v", err)
	}
}

func TestBoltPersistence(t *testing.T) {
	ctx := context.Background()
	db, dbPath := openTestBolt(t)

	if err := db.Write(ctx, "test", "data"); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}
	if err := db.SaveIndex(ctx, NewIndex()); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}
	db.Close()

	db2, err := OpenBolt(dbPath, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	if _, err := db2.LoadIndex(ctx); err != nil {
		t.Fatalf("Failed to load index: %v", err)
	}

	data, err := db2.Read(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if data != "data" {
		t.Error("Record not persisted correctly")
	}
}
