package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Status describes how a notebook directory relates to an enclosing git
// repository. Note records are encrypted and safe to commit; the index is
// not, since titles, tags and history are stored in plaintext.
type Status struct {
	IsRepo    bool
	Tracked   []string // Plaintext files tracked by git (bad)
	Unignored []string // Plaintext files not covered by .gitignore (warning)
}

// IsGitRepo checks if dir is inside a git work tree
func IsGitRepo(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(ctx context.Context, dir, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--", path)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(ctx context.Context, dir, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "check-ignore", "-q", "--", path)
	cmd.Dir = dir

	// exit code 0 means ignored
	return cmd.Run() == nil
}

// Check inspects the plaintext files of a notebook, given relative to dir
func Check(ctx context.Context, dir string, plaintext []string) *Status {
	status := &Status{}
	if !IsGitRepo(ctx, dir) {
		return status
	}
	status.IsRepo = true

	for _, file := range plaintext {
		if IsTracked(ctx, dir, file) {
			status.Tracked = append(status.Tracked, file)
			continue
		}
		if !IsIgnored(ctx, dir, file) {
			status.Unignored = append(status.Unignored, file)
		}
	}

	return status
}

// Format renders status for display; it is empty outside a repository
func Format(status *Status) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")

	for _, file := range status.Tracked {
		result.WriteString(fmt.Sprintf("   error: %s is tracked by git and exposes note titles (run: git rm --cached %s)\n", file, file))
	}
	for _, file := range status.Unignored {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", file))
	}
	if len(status.Tracked) == 0 && len(status.Unignored) == 0 {
		result.WriteString("   ok: notebook index is ignored by git\n")
	}

	return result.String()
}
