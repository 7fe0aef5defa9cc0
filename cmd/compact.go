package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/config"
)

// Compact compacts the bolt database to reclaim unused space
func Compact(ctx context.Context, env *Env) {
	if env.Config.Backend != config.BackendBolt {
		fmt.Println("nothing to compact for the file backend")
		return
	}

	nb := OpenNotebook(env)
	defer nb.Close()

	if _, err := nb.GetVaultID(ctx); err != nil {
		HandleError(err)
	}

	info, err := os.Stat(nb.Location())
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := nb.Compact(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(nb.Location())
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
