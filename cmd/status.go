package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/git"
	"github.com/illarion/locknote/internal/keyring"
	"github.com/illarion/locknote/internal/storage"
)

// Status shows the notebook state. No password is required.
func Status(ctx context.Context, env *Env) {
	nb := OpenNotebook(env)
	defer nb.Close()

	status, err := nb.Status(ctx)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Notebook:  %s (%s)\n", status.Location, env.Config.Backend)
	fmt.Printf("Vault ID:  %s\n", status.VaultID)
	fmt.Printf("Created:   %s\n", status.Created.Format(time.RFC3339))
	fmt.Printf("Modified:  %s\n", status.Modified.Format(time.RFC3339))
	fmt.Printf("Notes:     %d\n", status.NoteCount)
	fmt.Printf("History:   %d entries\n", status.HistoryCount)

	if keyring.HasPassword(status.VaultID) {
		fmt.Println("Keyring:   password stored")
	} else {
		fmt.Println("Keyring:   not stored")
	}

	if len(status.Orphaned) > 0 {
		fmt.Println("\nRecords without index entry:")
		for _, id := range status.Orphaned {
			fmt.Printf("  ? %s\n", id)
		}
	}
	if len(status.Missing) > 0 {
		fmt.Println("\nIndex entries without record:")
		for _, id := range status.Missing {
			fmt.Printf("  ! %s\n", id)
		}
	}

	plaintext := storage.IndexFile
	if env.Config.Backend == config.BackendBolt {
		plaintext = storage.BoltFile
	}
	fmt.Print(git.Format(git.Check(ctx, env.Config.Dir, []string{plaintext})))

	fmt.Println()
	printNotes(ctx, nb, "")
}
