package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/crypto"
)

// Remove deletes notes
func Remove(ctx context.Context, env *Env, refs []string) {
	if len(refs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: rm requires at least one note argument\n")
		fmt.Fprintf(os.Stderr, "Usage: locknote rm <note> [note...]\n")
		os.Exit(1)
	}

	nb, password, _ := UnlockNotebook(ctx, env, "Enter password: ")
	defer nb.Close()
	defer crypto.ClearBytes(password)

	for _, ref := range refs {
		id := ResolveNote(ctx, nb, ref)
		if err := nb.Delete(ctx, password, id); err != nil {
			HandleError(err)
		}
		fmt.Printf("removed: %s\n", id)
	}

	if env.Config.Backend == config.BackendBolt {
		if err := nb.Compact(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
		}
	}
}
