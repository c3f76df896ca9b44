package remote

import (
	"context"
	"fmt"

	"github.com/dyluth/distforge/internal/run"
)

// Host is the remote machine collaborator: it can mirror a local tree,
// execute commands in a remote directory, and fetch files back. The
// production implementation shells out to ssh and scp; tests substitute a
// fake.
type Host interface {
	// Remove deletes a remote directory tree. Removing a directory that
	// does not exist is not an error.
	Remove(ctx context.Context, remoteDir string) error

	// MirrorTree recursively copies localRoot to remoteDir.
	MirrorTree(ctx context.Context, localRoot, remoteDir string) error

	// Run executes a shell command inside remoteDir.
	Run(ctx context.Context, remoteDir, command string) error

	// Fetch copies a remote file to a local path.
	Fetch(ctx context.Context, remotePath, localPath string) error
}

// SSHHost talks to the remote worker through the ssh and scp binaries. Addr
// is an ssh destination such as user@winhost.
type SSHHost struct {
	Addr   string
	runner run.Runner
}

// NewSSHHost creates a Host for the given ssh destination.
func NewSSHHost(runner run.Runner, addr string) *SSHHost {
	return &SSHHost{Addr: addr, runner: runner}
}

func (h *SSHHost) Remove(ctx context.Context, remoteDir string) error {
	if err := h.runner.Run(ctx, "", "ssh", h.Addr, fmt.Sprintf("rm -rf %q", remoteDir)); err != nil {
		return fmt.Errorf("failed to remove remote directory %s: %w", remoteDir, err)
	}
	return nil
}

func (h *SSHHost) MirrorTree(ctx context.Context, localRoot, remoteDir string) error {
	if err := h.runner.Run(ctx, "", "scp", "-rq", localRoot, h.Addr+":"+remoteDir); err != nil {
		return fmt.Errorf("failed to mirror %s to %s: %w", localRoot, remoteDir, err)
	}
	return nil
}

func (h *SSHHost) Run(ctx context.Context, remoteDir, command string) error {
	if err := h.runner.Run(ctx, "", "ssh", h.Addr, fmt.Sprintf("cd %q && %s", remoteDir, command)); err != nil {
		return fmt.Errorf("remote command failed: %w", err)
	}
	return nil
}

func (h *SSHHost) Fetch(ctx context.Context, remotePath, localPath string) error {
	if err := h.runner.Run(ctx, "", "scp", "-q", h.Addr+":"+remotePath, localPath); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remotePath, err)
	}
	return nil
}
