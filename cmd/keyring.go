package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/keyring"
)

// KeyringSave saves the password to the OS keyring
func KeyringSave(ctx context.Context, env *Env) {
	nb := OpenNotebook(env)
	defer nb.Close()

	vaultID, err := nb.GetVaultID(ctx)
	if err != nil {
		HandleError(err)
	}

	password, err := core.ReadPassword("Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	if err := nb.VerifyPassword(ctx, password); err != nil {
		HandleError(err)
	}

	if err := keyring.SavePassword(vaultID, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the password from the OS keyring
func KeyringDelete(ctx context.Context, env *Env) {
	nb := OpenNotebook(env)
	defer nb.Close()

	vaultID, err := nb.GetVaultID(ctx)
	if err != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	if err := keyring.DeletePassword(vaultID); err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(ctx context.Context, env *Env) {
	nb := OpenNotebook(env)
	defer nb.Close()

	vaultID, err := nb.GetVaultID(ctx)
	if err != nil {
		fmt.Println("Password: not stored")
		return
	}

	if keyring.HasPassword(vaultID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
