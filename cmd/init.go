package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
)

// Init creates a new notebook in the configured data directory
func Init(ctx context.Context, env *Env) {
	nb := OpenNotebook(env)
	defer nb.Close()

	password := core.GetPasswordFromEnv()
	if password == nil {
		var err error
		password, err = core.ReadPasswordConfirm("Choose password: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}
	defer crypto.ClearBytes(password)

	if err := nb.Init(ctx, password); err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Initialized notebook in %s\n", nb.Location())
}
