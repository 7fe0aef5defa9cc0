package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/locknote/internal/crypto"
)

// New creates a note from a file, piped stdin or the editor
func New(ctx context.Context, env *Env, title string, tags []string, file string) {
	nb, password, source := UnlockNotebook(ctx, env, "Enter password: ")
	defer nb.Close()
	defer crypto.ClearBytes(password)

	content, err := ReadContent(file, "")
	if err != nil {
		HandleError(err)
	}

	entry, err := nb.Create(ctx, password, title, content, tags)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("created: %s  %s\n", entry.ID, entry.Title)

	if source == SourcePrompt {
		vaultID, _ := nb.GetVaultID(ctx)
		OfferToSavePassword(vaultID, password)
	}
}
