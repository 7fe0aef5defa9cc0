package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/keyring"
)

// Passwd changes the notebook password, rekeying notes when asked
func Passwd(ctx context.Context, env *Env, rekey bool) {
	nb, currentPassword, _ := UnlockNotebook(ctx, env, "Enter current password: ")
	defer nb.Close()
	defer crypto.ClearBytes(currentPassword)

	vaultID, _ := nb.GetVaultID(ctx)

	newPassword, err := core.ReadPasswordConfirm("Enter new password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(newPassword)

	result, err := nb.ChangePassword(ctx, currentPassword, newPassword, rekey)
	if err != nil {
		HandleError(err)
	}

	if vaultID != "" && keyring.HasPassword(vaultID) {
		if err := keyring.SavePassword(vaultID, newPassword); err == nil {
			fmt.Println("Keyring updated with new password")
		}
	}

	if rekey {
		fmt.Printf("rekeyed: %d notes\n", len(result.Rekeyed))
		if env.Config.Backend == config.BackendBolt {
			if err := nb.Compact(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: compaction failed: %s\n", err)
			}
		}
	} else {
		fmt.Println("existing notes keep their old password until 'locknote recover' or 'passwd -rekey'")
	}
	for _, id := range result.Stale {
		fmt.Printf("  stale: %s (needs 'locknote recover')\n", id)
	}
	for _, id := range result.Unreadable {
		fmt.Printf("  unreadable: %s\n", id)
	}

	fmt.Println("password changed successfully")
}
