package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/illarion/locknote/internal/auth"
	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/logger"
	"github.com/illarion/locknote/internal/recovery"
	"github.com/illarion/locknote/internal/storage"
)

const DefaultTitle = "Untitled"

// History actions
const (
	ActionCreate  = "create"
	ActionOpen    = "open"
	ActionUpdate  = "update"
	ActionRename  = "rename"
	ActionDelete  = "delete"
	ActionRecover = "recover"
	ActionRekey   = "rekey"
)

var (
	ErrNotInitialized   = errors.New("locknote not initialized")
	ErrAlreadyExists    = errors.New("locknote already exists")
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordRequired = errors.New("password required")
	ErrNoteNotFound     = errors.New("note not found")
)

// Notebook manages encrypted notes on top of a storage backend
type Notebook struct {
	store    storage.Backend
	recovery *recovery.Protocol
	log      *logger.Logger

	// serializes index read-modify-write cycles
	mu sync.Mutex
}

// RekeyResult reports what ChangePassword did with existing notes
type RekeyResult struct {
	Rekeyed    []string // re-encrypted under the new password
	Stale      []string // sealed under some older password, left for recover
	Unreadable []string // corrupt or malformed, left untouched
}

// StatusInfo contains notebook status information
type StatusInfo struct {
	Location     string
	VaultID      string
	NoteCount    int
	RecordCount  int
	Orphaned     []string // records on disk without an index entry
	Missing      []string // index entries without a record
	Created      time.Time
	Modified     time.Time
	HistoryCount int
}

// New creates a Notebook over an already opened backend.
func New(store storage.Backend, log *logger.Logger) *Notebook {
	if log == nil {
		log = logger.Nop()
	}
	return &Notebook{
		store:    store,
		recovery: recovery.New(store, log),
		log:      log.Module("core"),
	}
}

// Open opens the backend described by cfg and wraps it in a Notebook.
func Open(cfg *config.Config, log *logger.Logger) (*Notebook, error) {
	store, err := storage.Open(cfg.Dir, cfg.Backend, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return New(store, log), nil
}

// Close releases the backend
func (n *Notebook) Close() error {
	return n.store.Close()
}

// Location returns where the backend keeps its data
func (n *Notebook) Location() string {
	return n.store.Location()
}

func (n *Notebook) loadIndex(ctx context.Context) (*storage.Index, error) {
	index, err := n.store.LoadIndex(ctx)
	if errors.Is(err, storage.ErrNotInitialized) {
		return nil, ErrNotInitialized
	}
	return index, err
}

// unlock checks password against the stored credential and returns the
// index together with a cipher bound to that password. The caller must
// Destroy the cipher.
func (n *Notebook) unlock(ctx context.Context, password []byte) (*storage.Index, *crypto.RecordCipher, error) {
	if len(password) == 0 {
		return nil, nil, ErrPasswordRequired
	}

	index, err := n.loadIndex(ctx)
	if err != nil {
		return nil, nil, err
	}

	if !auth.CheckPassword(password, index.Credential) {
		n.log.Warn().Msg("password check failed")
		return nil, nil, ErrWrongPassword
	}

	return index, crypto.NewRecordCipher(password), nil
}

// Init creates a new notebook protected by password
func (n *Notebook) Init(ctx context.Context, password []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := n.loadIndex(ctx)
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotInitialized) {
		return err
	}

	if err := auth.ValidateNewPassword(password); err != nil {
		return err
	}

	credential, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	index := storage.NewIndex()
	index.VaultID = uuid.NewString()
	index.Credential = credential

	if err := n.store.SaveIndex(ctx, index); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	n.log.Info().Str("vault", index.VaultID).Str("location", n.store.Location()).Msg("notebook initialized")
	return nil
}

// VerifyPassword checks if the password is correct for this notebook
func (n *Notebook) VerifyPassword(ctx context.Context, password []byte) error {
	_, enc, err := n.unlock(ctx, password)
	if err != nil {
		return err
	}
	enc.Destroy()
	return nil
}

// Create encrypts content into a new note and returns its index entry
func (n *Notebook) Create(ctx context.Context, password []byte, title, content string, tags []string) (*storage.NoteEntry, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, enc, err := n.unlock(ctx, password)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()

	blob, err := enc.Encrypt(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt note: %w", err)
	}

	id := uuid.NewString()
	if err := n.store.Write(ctx, id, blob); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	now := time.Now()
	entry := storage.NoteEntry{
		ID:       id,
		Title:    title,
		Tags:     normalizeTags(tags),
		Created:  now,
		Modified: now,
	}
	index.AddNote(entry)
	index.Log(id, ActionCreate)

	if err := n.store.SaveIndex(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to save index: %w", err)
	}

	n.log.Info().Str("id", id).Msg("note created")
	return &entry, nil
}

// Read decrypts a note. Decryption errors keep their crypto kind, so
// callers can tell crypto.ErrAuthFailed (sealed under another password)
// apart from corruption.
func (n *Notebook) Read(ctx context.Context, password []byte, id string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, enc, err := n.unlock(ctx, password)
	if err != nil {
		return "", err
	}
	defer enc.Destroy()

	content, err := n.open(ctx, enc, id)
	if err != nil {
		return "", err
	}

	index.Log(id, ActionOpen)
	if err := n.store.SaveIndex(ctx, index); err != nil {
		n.log.Warn().Err(err).Str("id", id).Msg("failed to record access")
	}
	return content, nil
}

func (n *Notebook) open(ctx context.Context, enc *crypto.RecordCipher, id string) (string, error) {
	blob, err := n.store.Read(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNoteNotFound, id)
		}
		return "", err
	}

	content, err := enc.Decrypt(blob)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthFailed) {
			n.log.Warn().Str("id", id).Msg("note sealed under a different password")
		} else {
			n.log.Error().Str("id", id).Err(err).Msg("note failed to decrypt")
		}
		return "", fmt.Errorf("failed to open note %s: %w", id, err)
	}
	return content, nil
}

// Update replaces the content of a note. The stored blob must open under
// password first, so a stale note is never silently overwritten.
func (n *Notebook) Update(ctx context.Context, password []byte, id, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, enc, err := n.unlock(ctx, password)
	if err != nil {
		return err
	}
	defer enc.Destroy()

	if _, err := n.open(ctx, enc, id); err != nil {
		return err
	}

	blob, err := enc.Encrypt(content)
	if err != nil {
		return fmt.Errorf("failed to encrypt note: %w", err)
	}
	if err := n.store.Write(ctx, id, blob); err != nil {
		return err
	}

	n.touch(index, id)
	index.Log(id, ActionUpdate)
	if err := n.store.SaveIndex(ctx, index); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	n.log.Info().Str("id", id).Msg("note updated")
	return nil
}

// Rename changes the title and tags of a note. Content is not touched.
func (n *Notebook) Rename(ctx context.Context, password []byte, id, title string, tags []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, enc, err := n.unlock(ctx, password)
	if err != nil {
		return err
	}
	enc.Destroy()

	entry := index.FindNote(id)
	if entry == nil {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	if title = strings.TrimSpace(title); title != "" {
		entry.Title = title
	}
	if tags != nil {
		entry.Tags = normalizeTags(tags)
	}
	entry.Modified = time.Now()
	index.Log(id, ActionRename)

	return n.store.SaveIndex(ctx, index)
}

// Delete removes a note and its index entry
func (n *Notebook) Delete(ctx context.Context, password []byte, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, enc, err := n.unlock(ctx, password)
	if err != nil {
		return err
	}
	enc.Destroy()

	err = n.store.Delete(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return err
	}
	if !index.RemoveNote(id) && err != nil {
		return fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}

	index.Log(id, ActionDelete)
	if err := n.store.SaveIndex(ctx, index); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	n.log.Info().Str("id", id).Msg("note deleted")
	return nil
}

// List returns index entries, most recently modified first. No password
// is needed: the index is plaintext.
func (n *Notebook) List(ctx context.Context) ([]storage.NoteEntry, error) {
	index, err := n.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	notes := slices.Clone(index.Notes)
	slices.SortStableFunc(notes, func(a, b storage.NoteEntry) int {
		return b.Modified.Compare(a.Modified)
	})
	return notes, nil
}

// Find resolves a note by full ID or unique ID prefix.
func (n *Notebook) Find(ctx context.Context, ref string) (*storage.NoteEntry, error) {
	index, err := n.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	if entry := index.FindNote(ref); entry != nil {
		return entry, nil
	}

	var match *storage.NoteEntry
	for i := range index.Notes {
		if ref != "" && strings.HasPrefix(index.Notes[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous note reference %q", ref)
			}
			match = &index.Notes[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, ref)
	}
	return match, nil
}

// History returns up to limit of the newest access entries, oldest first
func (n *Notebook) History(ctx context.Context, limit int) ([]storage.AccessEntry, error) {
	index, err := n.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return index.Recent(limit), nil
}

// Recover re-encrypts a note sealed under oldPassword so it opens under
// currentPassword again, and returns its content.
func (n *Notebook) Recover(ctx context.Context, id string, oldPassword, currentPassword []byte) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, enc, err := n.unlock(ctx, currentPassword)
	if err != nil {
		return "", err
	}
	defer enc.Destroy()

	content, err := n.recovery.Recover(ctx, id, oldPassword, enc)
	if err != nil {
		return "", err
	}

	n.touch(index, id)
	index.Log(id, ActionRecover)
	if err := n.store.SaveIndex(ctx, index); err != nil {
		return "", fmt.Errorf("failed to save index: %w", err)
	}
	return content, nil
}

// ChangePassword replaces the master password.
//
// Without rekey only the credential changes and existing notes stay sealed
// under their old password until recovered one by one. With rekey every
// note is decrypted first; only after all of them have been read are the
// readable ones written back under newPassword. Notes that fail with
// crypto.ErrAuthFailed are already stale; other decryption failures mark a
// note unreadable. Both are reported and left untouched. A storage error
// aborts before anything is written.
func (n *Notebook) ChangePassword(ctx context.Context, currentPassword, newPassword []byte, rekey bool) (*RekeyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	index, currentEnc, err := n.unlock(ctx, currentPassword)
	if err != nil {
		return nil, err
	}
	defer currentEnc.Destroy()

	if err := auth.ValidateNewPassword(newPassword); err != nil {
		return nil, err
	}

	result := &RekeyResult{}

	type noteData struct {
		id      string
		content string
	}
	var notes []noteData

	if rekey {
		ids, err := n.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list records: %w", err)
		}

		for _, id := range ids {
			blob, err := n.store.Read(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to read note %s: %w", id, err)
			}
			content, err := currentEnc.Decrypt(blob)
			if errors.Is(err, crypto.ErrAuthFailed) {
				result.Stale = append(result.Stale, id)
				continue
			}
			if err != nil {
				n.log.Error().Str("id", id).Err(err).Msg("note unreadable, skipping rekey")
				result.Unreadable = append(result.Unreadable, id)
				continue
			}
			notes = append(notes, noteData{id: id, content: content})
		}
	}

	credential, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	index.Credential = credential
	index.Modified = time.Now()

	// The credential is committed before the notes are rewritten: if a
	// write fails below, the remaining notes are still readable with the
	// old password through Recover.
	if err := n.store.SaveIndex(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to save index: %w", err)
	}

	newEnc := crypto.NewRecordCipher(newPassword)
	defer newEnc.Destroy()

	for _, note := range notes {
		blob, err := newEnc.Encrypt(note.content)
		if err != nil {
			return result, fmt.Errorf("failed to re-encrypt note %s: %w", note.id, err)
		}
		if err := n.store.Write(ctx, note.id, blob); err != nil {
			return result, fmt.Errorf("failed to store re-encrypted note %s: %w", note.id, err)
		}
		result.Rekeyed = append(result.Rekeyed, note.id)
	}

	if len(result.Rekeyed) > 0 {
		index.Log("", ActionRekey)
		if err := n.store.SaveIndex(ctx, index); err != nil {
			n.log.Warn().Err(err).Msg("failed to record rekey")
		}
	}

	n.log.Info().
		Bool("rekey", rekey).
		Int("rekeyed", len(result.Rekeyed)).
		Int("stale", len(result.Stale)).
		Msg("password changed")
	return result, nil
}

// Status reports index and storage consistency. No password is needed.
func (n *Notebook) Status(ctx context.Context) (*StatusInfo, error) {
	index, err := n.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := n.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	info := &StatusInfo{
		Location:     n.store.Location(),
		VaultID:      index.VaultID,
		NoteCount:    len(index.Notes),
		RecordCount:  len(ids),
		Created:      index.Created,
		Modified:     index.Modified,
		HistoryCount: len(index.History),
	}

	onDisk := make(map[string]bool, len(ids))
	for _, id := range ids {
		onDisk[id] = true
		if index.FindNote(id) == nil {
			info.Orphaned = append(info.Orphaned, id)
		}
	}
	for _, note := range index.Notes {
		if !onDisk[note.ID] {
			info.Missing = append(info.Missing, note.ID)
		}
	}
	return info, nil
}

// Compact reclaims unused space in the backend
func (n *Notebook) Compact() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Compact()
}

// GetVaultID returns the notebook's vault ID
func (n *Notebook) GetVaultID(ctx context.Context) (string, error) {
	index, err := n.loadIndex(ctx)
	if err != nil {
		return "", err
	}
	return index.VaultID, nil
}

// touch bumps the modified time of a note, adding an entry for records
// that exist on disk but were missing from the index.
func (n *Notebook) touch(index *storage.Index, id string) {
	now := time.Now()
	if entry := index.FindNote(id); entry != nil {
		entry.Modified = now
		index.Modified = now
		return
	}
	index.AddNote(storage.NoteEntry{ID: id, Title: DefaultTitle, Created: now, Modified: now})
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
