package core

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"golang.org/x/term"
)

var ErrEditAborted = errors.New("edit aborted")

// getEditor returns the editor to use, checking environment variables with fallback
func getEditor() string {
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "vi"
}

// invokeEditor opens the editor on filename and waits for it to exit
func invokeEditor(filename string) error {
	editor := getEditor()

	if _, err := exec.LookPath(editor); err != nil {
		return fmt.Errorf("editor '%s' not found: %w\nPlease set VISUAL or EDITOR environment variable", editor, err)
	}

	cmd := exec.Command(editor, filename)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("editor exited with code %d", exitErr.ExitCode())
	}
	return err
}

// readChoice reads a single character choice from the terminal
func readChoice() (string, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		var input string
		_, err := fmt.Scanln(&input)
		if err != nil {
			return "", err
		}
		return strings.ToLower(strings.TrimSpace(input)), nil
	}
	defer func() { _ = term.Restore(int(os.Stdin.Fd()), oldState) }()

	buf := make([]byte, 1)
	if _, err := os.Stdin.Read(buf); err != nil {
		return "", err
	}

	choice := strings.ToLower(string(buf[0]))
	fmt.Printf("%s\n", choice)
	return choice, nil
}

// EditText opens initial in the user's editor and returns the edited text.
// The plaintext lives in a 0600 temp file only while the editor runs.
func EditText(initial string) (string, error) {
	tmpFile, err := os.CreateTemp("", "locknote-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmpFile.Name()
	defer os.Remove(name)

	if err := os.Chmod(name, 0600); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to set temp file permissions: %w", err)
	}
	if _, err := tmpFile.WriteString(initial); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := invokeEditor(name); err != nil {
		return "", err
	}

	edited, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}

	if len(edited) == 0 && initial != "" {
		fmt.Printf("\nwarning: edited note is empty\n")
		fmt.Printf("Save empty content? [y/N]: ")
		choice, err := readChoice()
		if err != nil {
			return "", err
		}
		if choice != "y" {
			return "", ErrEditAborted
		}
	}

	return string(edited), nil
}
