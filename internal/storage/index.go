package storage

import (
	"time"
)

// MaxHistory bounds the access history ring.
const MaxHistory = 100

// Index is the plaintext metadata kept next to the encrypted records.
// It never contains record content or key material; Credential is a bcrypt
// hash used only for the login check.
type Index struct {
	Version    int           `json:"version"`
	VaultID    string        `json:"vaultId"`
	Credential string        `json:"credential"`
	Created    time.Time     `json:"created"`
	Modified   time.Time     `json:"modified"`
	Notes      []NoteEntry   `json:"notes"`
	History    []AccessEntry `json:"history"`
}

// NoteEntry describes one record in the index
type NoteEntry struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Tags     []string  `json:"tags"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// AccessEntry is one line of the access history
type AccessEntry struct {
	Date   time.Time `json:"date"`
	NoteID string    `json:"noteId"`
	Action string    `json:"action"`
}

// NewIndex creates an empty index
func NewIndex() *Index {
	now := time.Now()
	return &Index{
		Version:  1,
		Created:  now,
		Modified: now,
		Notes:    make([]NoteEntry, 0),
		History:  make([]AccessEntry, 0),
	}
}

// AddNote adds or updates a note entry
func (x *Index) AddNote(entry NoteEntry) {
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	for i := range x.Notes {
		if x.Notes[i].ID == entry.ID {
			x.Notes[i] = entry
			x.Modified = time.Now()
			return
		}
	}
	x.Notes = append(x.Notes, entry)
	x.Modified = time.Now()
}

// RemoveNote removes a note entry
func (x *Index) RemoveNote(id string) bool {
	for i, n := range x.Notes {
		if n.ID == id {
			x.Notes = append(x.Notes[:i], x.Notes[i+1:]...)
			x.Modified = time.Now()
			return true
		}
	}
	return false
}

// FindNote finds a note entry by ID
func (x *Index) FindNote(id string) *NoteEntry {
	for i := range x.Notes {
		if x.Notes[i].ID == id {
			return &x.Notes[i]
		}
	}
	return nil
}

// Log appends to the access history, keeping the newest MaxHistory entries.
func (x *Index) Log(noteID, action string) {
	x.History = append(x.History, AccessEntry{
		Date:   time.Now(),
		NoteID: noteID,
		Action: action,
	})
	if over := len(x.History) - MaxHistory; over > 0 {
		x.History = append(x.History[:0:0], x.History[over:]...)
	}
}

// Recent returns up to limit of the newest history entries, oldest first.
func (x *Index) Recent(limit int) []AccessEntry {
	if limit <= 0 || limit >= len(x.History) {
		return append([]AccessEntry(nil), x.History...)
	}
	return append([]AccessEntry(nil), x.History[len(x.History)-limit:]...)
}
