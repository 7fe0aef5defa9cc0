package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddFindRemove(t *testing.T) {
	index := NewIndex()

	index.AddNote(NoteEntry{ID: "n1", Title: "one"})
	index.AddNote(NoteEntry{ID: "n2", Title: "two"})
	index.AddNote(NoteEntry{ID: "n1", Title: "one, renamed"})

	require.Len(t, index.Notes, 2)
	entry := index.FindNote("n1")
	require.NotNil(t, entry)
	assert.Equal(t, "one, renamed", entry.Title)
	assert.NotNil(t, entry.Tags)

	assert.True(t, index.RemoveNote("n1"))
	assert.False(t, index.RemoveNote("n1"))
	assert.Nil(t, index.FindNote("n1"))
	assert.Len(t, index.Notes, 1)
}

func TestIndex_HistoryIsBounded(t *testing.T) {
	index := NewIndex()

	for i := 0; i < MaxHistory+25; i++ {
		index.Log(fmt.Sprintf("n%d", i), "read")
	}

	require.Len(t, index.History, MaxHistory)
	assert.Equal(t, "n25", index.History[0].NoteID)
	assert.Equal(t, fmt.Sprintf("n%d", MaxHistory+24), index.History[MaxHistory-1].NoteID)
}

func TestIndex_Recent(t *testing.T) {
	index := NewIndex()
	for i := 0; i < 5; i++ {
		index.Log(fmt.Sprintf("n%d", i), "update")
	}

	recent := index.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "n3", recent[0].NoteID)
	assert.Equal(t, "n4", recent[1].NoteID)

	assert.Len(t, index.Recent(0), 5)
	assert.Len(t, index.Recent(50), 5)

	recent[0].NoteID = "changed"
	assert.Equal(t, "n3", index.History[3].NoteID, "Recent returns a copy")
}
