package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"unicode"

	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/storage"
)

// Fields a search match can come from
const (
	FieldTitle   = "title"
	FieldTag     = "tag"
	FieldContent = "content"
)

// SearchContext is how many runes of content are kept on each side of a match
const SearchContext = 50

// Match is one occurrence of the query. Start and End are rune offsets into
// the field. For content matches Text is the surrounding excerpt, which
// begins at rune ContextStart; otherwise it is the whole title or tag.
type Match struct {
	Field        string
	Start        int
	End          int
	Text         string
	ContextStart int
}

// SearchResult groups the matches found in one note
type SearchResult struct {
	Note    storage.NoteEntry
	Matches []Match
}

// SearchReport is the outcome of Search
type SearchReport struct {
	Results    []SearchResult
	Stale      []string // sealed under an older password, content not searched
	Unreadable []string // missing or corrupt record, content not searched
}

// Search looks for query in the title, tags and content of every indexed
// note, ignoring case. Notes that do not open under password are reported
// in Stale or Unreadable; their titles and tags are still matched.
func (n *Notebook) Search(ctx context.Context, password []byte, query string) (*SearchReport, error) {
	index, enc, err := n.unlock(ctx, password)
	if err != nil {
		return nil, err
	}
	defer enc.Destroy()

	report := &SearchReport{}
	needle := foldRunes(query)
	if len(needle) == 0 {
		return report, nil
	}

	notes := slices.Clone(index.Notes)
	slices.SortStableFunc(notes, func(a, b storage.NoteEntry) int {
		return b.Modified.Compare(a.Modified)
	})

	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var matches []Match
		if pos := indexRunes(foldRunes(note.Title), needle, 0); pos >= 0 {
			matches = append(matches, Match{Field: FieldTitle, Start: pos, End: pos + len(needle), Text: note.Title})
		}
		for _, tag := range note.Tags {
			if pos := indexRunes(foldRunes(tag), needle, 0); pos >= 0 {
				matches = append(matches, Match{Field: FieldTag, Start: pos, End: pos + len(needle), Text: tag})
			}
		}

		blob, err := n.store.Read(ctx, note.ID)
		switch {
		case errors.Is(err, storage.ErrRecordNotFound):
			report.Unreadable = append(report.Unreadable, note.ID)
		case err != nil:
			return nil, fmt.Errorf("failed to read note %s: %w", note.ID, err)
		default:
			content, err := enc.Decrypt(blob)
			switch {
			case errors.Is(err, crypto.ErrAuthFailed):
				report.Stale = append(report.Stale, note.ID)
			case err != nil:
				n.log.Error().Str("id", note.ID).Err(err).Msg("note unreadable, skipping search")
				report.Unreadable = append(report.Unreadable, note.ID)
			default:
				matches = append(matches, contentMatches(content, needle)...)
			}
		}

		if len(matches) > 0 {
			report.Results = append(report.Results, SearchResult{Note: note, Matches: matches})
		}
	}

	n.log.Debug().
		Int("results", len(report.Results)).
		Int("stale", len(report.Stale)).
		Msg("search finished")
	return report, nil
}

// contentMatches returns every occurrence of needle in content, overlapping
// ones included, each with up to SearchContext runes of context per side.
func contentMatches(content string, needle []rune) []Match {
	text := []rune(content)
	folded := foldRunes(content)

	var matches []Match
	for from := 0; ; {
		pos := indexRunes(folded, needle, from)
		if pos < 0 {
			return matches
		}
		start := max(0, pos-SearchContext)
		end := min(len(text), pos+len(needle)+SearchContext)
		matches = append(matches, Match{
			Field:        FieldContent,
			Start:        pos,
			End:          pos + len(needle),
			Text:         string(text[start:end]),
			ContextStart: start,
		})
		from = pos + 1
	}
}

// foldRunes lowercases rune by rune so offsets line up with []rune(s)
func foldRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func indexRunes(haystack, needle []rune, from int) int {
	for i := from; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
