// Package vcs wraps the version-control collaborator: working-tree status,
// single-file commits, and signed tag creation via the git binary.
package vcs

import (
	"fmt"
	"os/exec"
	"strings"
)

// Git runs version-control operations in a repository rooted at Dir.
type Git struct {
	Dir string
}

// New creates a Git client for the repository at dir.
func New(dir string) *Git {
	return &Git{Dir: dir}
}

// IsWorkspaceClean returns true if the working directory has no uncommitted
// changes. This includes staged, unstaged, and untracked files.
func (g *Git) IsWorkspaceClean() (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = g.Dir
	output, err := cmd.Output()
	if err != nil {
		if _, ok := err.(*exec.Error); ok {
			return false, fmt.Errorf("git not found in PATH")
		}
		return false, fmt.Errorf("failed to check git status: %w", err)
	}
	return len(strings.TrimSpace(string(output))) == 0, nil
}

// DirtyFiles returns a formatted list of uncommitted changes for error
// messages. Returns an empty string if the workspace is clean.
func (g *Git) DirtyFiles() (string, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = g.Dir
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to check git status: %w", err)
	}

	porcelain := strings.TrimSpace(string(output))
	if porcelain == "" {
		return "", nil
	}

	var modified, untracked []string
	for _, line := range strings.Split(porcelain, "\n") {
		if len(line) < 3 {
			continue
		}
		status := line[:2]
		file := strings.TrimSpace(line[2:])

		if strings.HasPrefix(status, "??") {
			untracked = append(untracked, file)
		} else {
			modified = append(modified, file)
		}
	}

	var parts []string
	if len(modified) > 0 {
		parts = append(parts, "Uncommitted changes:")
		for _, file := range modified {
			parts = append(parts, fmt.Sprintf("  M %s", file))
		}
	}
	if len(untracked) > 0 {
		if len(parts) > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, "Untracked files:")
		for _, file := range untracked {
			parts = append(parts, fmt.Sprintf("  ? %s", file))
		}
	}
	return strings.Join(parts, "\n"), nil
}

// CommitFile stages exactly one file and commits it with the given message.
func (g *Git) CommitFile(path, message string) error {
	add := exec.Command("git", "add", "--", path)
	add.Dir = g.Dir
	if output, err := add.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to stage %s: %s", path, commandDiagnostic(output, err))
	}

	commit := exec.Command("git", "commit", "-m", message, "--", path)
	commit.Dir = g.Dir
	if output, err := commit.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to commit %s: %s", path, commandDiagnostic(output, err))
	}
	return nil
}

// CreateSignedTag creates a cryptographically signed tag with the given
// message. Signing uses the repository's configured signing key.
func (g *Git) CreateSignedTag(name, message string) error {
	cmd := exec.Command("git", "tag", "-s", name, "-m", message)
	cmd.Dir = g.Dir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create signed tag %s: %s", name, commandDiagnostic(output, err))
	}
	return nil
}

func commandDiagnostic(output []byte, err error) string {
	diag := strings.TrimSpace(string(output))
	if diag == "" {
		return err.Error()
	}
	return diag
}
