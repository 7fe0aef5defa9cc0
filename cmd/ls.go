package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/illarion/locknote/internal/core"
)

// Ls lists notes from the plaintext index, optionally filtered by tag
func Ls(ctx context.Context, env *Env, tag string) {
	nb := OpenNotebook(env)
	defer nb.Close()

	printNotes(ctx, nb, tag)
}

func printNotes(ctx context.Context, nb *core.Notebook, tag string) {
	notes, err := nb.List(ctx)
	if err != nil {
		HandleError(err)
	}

	shown := 0
	for _, note := range notes {
		if tag != "" && !slices.Contains(note.Tags, tag) {
			continue
		}
		if shown == 0 {
			fmt.Println("Notes:")
		}
		shown++

		line := fmt.Sprintf("  %s  %s  %s", note.ID[:min(8, len(note.ID))], note.Modified.Format("2006-01-02 15:04"), note.Title)
		if len(note.Tags) > 0 {
			line += "  [" + strings.Join(note.Tags, ", ") + "]"
		}
		fmt.Println(line)
	}

	if shown == 0 {
		fmt.Println("No notes")
	}
}
