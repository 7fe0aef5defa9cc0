package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
)

// Recover reopens a note sealed under an old password and reseals it under
// the current one
func Recover(ctx context.Context, env *Env, ref string, show bool) {
	nb, current, _ := UnlockNotebook(ctx, env, "Enter current password: ")
	defer nb.Close()
	defer crypto.ClearBytes(current)

	id := ResolveNote(ctx, nb, ref)

	old, err := core.ReadPassword("Enter old password for this note: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(old)

	content, err := nb.Recover(ctx, id, old, current)
	if err != nil {
		HandleError(err)
	}

	fmt.Fprintf(os.Stderr, "recovered: %s is now encrypted with the current password\n", id)
	if show {
		fmt.Print(content)
	}
}
