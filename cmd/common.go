package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/locknote/internal/auth"
	"github.com/illarion/locknote/internal/config"
	"github.com/illarion/locknote/internal/core"
	"github.com/illarion/locknote/internal/crypto"
	"github.com/illarion/locknote/internal/keyring"
	"github.com/illarion/locknote/internal/logger"
	"github.com/illarion/locknote/internal/recovery"
	"github.com/illarion/locknote/internal/storage"
	"golang.org/x/term"
)

const maxPasswordAttempts = 3

// PasswordSource tells where a password came from
type PasswordSource int

const (
	SourceEnv PasswordSource = iota
	SourceKeyring
	SourcePrompt
)

// Env is what every command needs: resolved settings and a logger
type Env struct {
	Config *config.Config
	Log    *logger.Logger
}

// Setup resolves configuration from parsed flags and builds the logger.
// It exits on invalid configuration.
func Setup(ctx context.Context, flags *config.Flags) (context.Context, *Env) {
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	log := logger.New("locknote", logger.Options{
		Level: cfg.LogLevel,
		JSON:  cfg.LogJSON,
	})
	log.Debug().Str("dir", cfg.Dir).Str("backend", cfg.Backend).Msg("configuration loaded")

	return log.WithContext(ctx), &Env{Config: cfg, Log: log}
}

// OpenNotebook opens the configured notebook or exits
func OpenNotebook(env *Env) *core.Notebook {
	nb, err := core.Open(env.Config, env.Log)
	if err != nil {
		HandleError(err)
	}
	return nb
}

// GetPassword retrieves password from environment or prompts user
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// GetPasswordWithRetry finds a password that passes verify. It tries
// LOCKNOTE_PASSWORD, then the keyring, then prompts up to three times.
// A keyring entry that no longer verifies is removed.
func GetPasswordWithRetry(ctx context.Context, prompt, vaultID string, verify func(context.Context, []byte) error) ([]byte, PasswordSource, error) {
	log := logger.FromContext(ctx)

	if password := core.GetPasswordFromEnv(); password != nil {
		if err := verify(ctx, password); err != nil {
			crypto.ClearBytes(password)
			return nil, SourceEnv, err
		}
		return password, SourceEnv, nil
	}

	if vaultID != "" {
		password, err := keyring.GetPassword(vaultID)
		switch {
		case err == nil:
			verr := verify(ctx, password)
			if verr == nil {
				log.Debug().Msg("using password from keyring")
				return password, SourceKeyring, nil
			}
			crypto.ClearBytes(password)
			if !errors.Is(verr, core.ErrWrongPassword) {
				return nil, SourceKeyring, verr
			}
			fmt.Fprintln(os.Stderr, "warning: password in keyring is out of date, removing it")
			_ = keyring.DeletePassword(vaultID)
		case !errors.Is(err, keyring.ErrNotFound):
			log.Debug().Err(err).Msg("keyring unavailable")
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxPasswordAttempts; attempt++ {
		password, err := core.ReadPassword(prompt)
		if err != nil {
			return nil, SourcePrompt, err
		}
		lastErr = verify(ctx, password)
		if lastErr == nil {
			return password, SourcePrompt, nil
		}
		crypto.ClearBytes(password)
		if !errors.Is(lastErr, core.ErrWrongPassword) && !errors.Is(lastErr, core.ErrPasswordRequired) {
			return nil, SourcePrompt, lastErr
		}
		fmt.Fprintln(os.Stderr, "Sorry, try again.")
	}
	return nil, SourcePrompt, lastErr
}

// UnlockNotebook opens the notebook and obtains a verified password.
func UnlockNotebook(ctx context.Context, env *Env, prompt string) (*core.Notebook, []byte, PasswordSource) {
	nb := OpenNotebook(env)

	vaultID, err := nb.GetVaultID(ctx)
	if err != nil {
		nb.Close()
		HandleError(err)
	}

	password, source, err := GetPasswordWithRetry(ctx, prompt, vaultID, nb.VerifyPassword)
	if err != nil {
		nb.Close()
		HandleError(err)
	}
	return nb, password, source
}

// OfferToSavePassword asks once whether a typed password should be cached
// in the OS keyring.
func OfferToSavePassword(vaultID string, password []byte) {
	if vaultID == "" || !term.IsTerminal(int(os.Stdin.Fd())) || keyring.HasPassword(vaultID) {
		return
	}

	fmt.Print("Save password to keyring? [y/N]: ")
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return
	}

	if err := keyring.SavePassword(vaultID, password); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err)
		return
	}
	fmt.Println("Password saved to keyring")
}

// ReadContent returns note content from file, from piped stdin, or from
// the user's editor, in that order.
func ReadContent(file, initial string) (string, error) {
	var data []byte
	var err error

	switch {
	case file == "-":
		data, err = io.ReadAll(os.Stdin)
	case file != "":
		data, err = os.ReadFile(file)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		data, err = io.ReadAll(os.Stdin)
	default:
		return core.EditText(initial)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if !core.IsText(data) {
		return "", fmt.Errorf("content is not text")
	}
	return string(data), nil
}

// ResolveNote maps a note reference (ID or unique ID prefix) to an ID
func ResolveNote(ctx context.Context, nb *core.Notebook, ref string) string {
	entry, err := nb.Find(ctx, ref)
	if err != nil {
		// Records missing from the index are still addressable by full ID
		if errors.Is(err, core.ErrNoteNotFound) && storage.ValidateRecordID(ref) == nil {
			return ref
		}
		HandleError(err)
	}
	return entry.ID
}

// SplitTags parses a comma-separated tag list; an unset flag yields nil
func SplitTags(raw string, set bool) []string {
	if !set {
		return nil
	}
	return strings.Split(raw, ",")
}

// HandleError prints a user-facing message for err and exits
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: locknote not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'locknote init' first\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: a notebook already exists in this directory\n")
		fmt.Fprintf(os.Stderr, "Use 'locknote status' to see current state\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, core.ErrPasswordRequired):
		fmt.Fprintf(os.Stderr, "Error: password required\n")
	case errors.Is(err, core.ErrNoteNotFound), errors.Is(err, storage.ErrRecordNotFound):
		fmt.Fprintf(os.Stderr, "Error: note not found\n")
	case errors.Is(err, recovery.ErrRecoveryFailed):
		if errors.Is(err, crypto.ErrAuthFailed) {
			fmt.Fprintf(os.Stderr, "Error: the old password does not open this note either\n")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	case errors.Is(err, crypto.ErrAuthFailed):
		fmt.Fprintf(os.Stderr, "Error: this note was encrypted with a different password\n")
		fmt.Fprintf(os.Stderr, "Run 'locknote recover <note>' with the old password\n")
	case errors.Is(err, crypto.ErrInvalidPlaintext):
		fmt.Fprintf(os.Stderr, "Error: content is not valid UTF-8 text\n")
	case errors.Is(err, crypto.ErrEmptyInput),
		errors.Is(err, crypto.ErrMalformedEncoding),
		errors.Is(err, crypto.ErrTruncated),
		errors.Is(err, crypto.ErrNoCiphertext),
		errors.Is(err, crypto.ErrIntegrityMismatch),
		errors.Is(err, crypto.ErrInvalidText):
		fmt.Fprintf(os.Stderr, "Error: note could not be decrypted, it may be corrupted\n")
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, core.ErrEditAborted):
		fmt.Fprintf(os.Stderr, "Aborted\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
