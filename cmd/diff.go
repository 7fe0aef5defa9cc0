package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/crypto"
)

// Diff compares a stored note with a local file
func Diff(ctx context.Context, env *Env, ref, file string) {
	local, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(local)

	nb, password, _ := UnlockNotebook(ctx, env, "Enter password: ")
	defer nb.Close()
	defer crypto.ClearBytes(password)

	id := ResolveNote(ctx, nb, ref)

	out, err := nb.Diff(ctx, password, id, local)
	if err != nil {
		HandleError(err)
	}

	if out == "" {
		fmt.Println("no differences")
		return
	}
	fmt.Print(out)
}
