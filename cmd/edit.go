package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
	"golang.org/x/term"
)

// Edit replaces a note's content and optionally its title and tags.
// With neither a file nor piped input the current content opens in the
// editor.
func Edit(ctx context.Context, env *Env, ref, file, title string, tags []string) {
	nb, password, _ := UnlockNotebook(ctx, env, "Enter password: ")
	defer nb.Close()
	defer crypto.ClearBytes(password)

	id := ResolveNote(ctx, nb, ref)

	var content string
	piped := false
	if title != "" || tags != nil {
		if err := nb.Rename(ctx, password, id, title, tags); err != nil {
			HandleError(err)
		}
		if file == "" {
			var err error
			content, piped, err = pipedInput(os.Stdin)
			if err != nil {
				HandleError(err)
			}
			if !piped {
				fmt.Printf("updated: %s\n", id)
				return
			}
		}
	}

	current, err := nb.Read(ctx, password, id)
	if err != nil {
		HandleError(err)
	}

	if !piped {
		content, err = ReadContent(file, current)
		if err != nil {
			HandleError(err)
		}
	}

	if core.SameContent([]byte(current), []byte(content)) {
		fmt.Println("no changes")
		return
	}

	if err := nb.Update(ctx, password, id, content); err != nil {
		HandleError(err)
	}
	fmt.Printf("updated: %s\n", id)
}

// pipedInput reads content piped on in. It reports false when in is a
// terminal or the pipe was empty, so a metadata-only edit keeps the content.
func pipedInput(in *os.File) (string, bool, error) {
	if term.IsTerminal(int(in.Fd())) {
		return "", false, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", false, fmt.Errorf("failed to read content: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	if !core.IsText(data) {
		return "", false, fmt.Errorf("content is not text")
	}
	return string(data), true, nil
}
