package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/illarion/locknote/internal/crypto"
)

// Show decrypts a note and prints it to stdout, or copies it to the
// system clipboard when clip is set.
func Show(ctx context.Context, env *Env, ref string, clip bool) {
	nb, password, source := UnlockNotebook(ctx, env, "Enter password: ")
	defer nb.Close()
	defer crypto.ClearBytes(password)

	id := ResolveNote(ctx, nb, ref)

	content, err := nb.Read(ctx, password, id)
	if err != nil {
		HandleError(err)
	}

	if clip {
		if err := clipboard.WriteAll(content); err != nil {
			fmt.Fprintf(os.Stderr, "Error: clipboard unavailable: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("copied to clipboard")
	} else {
		fmt.Print(content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			fmt.Println()
		}
	}

	if source == SourcePrompt {
		vaultID, _ := nb.GetVaultID(ctx)
		OfferToSavePassword(vaultID, password)
	}
}
