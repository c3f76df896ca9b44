// Package remote delegates one packaging format to a different operating
// system over a network connection, keeping the local and remote trees
// consistent.
package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dyluth/distforge/internal/fsutil"
)

// State tracks a session through its fixed progression:
// Idle -> Synced -> RemoteBuilt -> Retrieved, with Failed reachable from any
// state.
type State int

const (
	Idle State = iota
	Synced
	RemoteBuilt
	Retrieved
	Failed
)

// String returns a short human-readable form of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Synced:
		return "synced"
	case RemoteBuilt:
		return "remote-built"
	case Retrieved:
		return "retrieved"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// Session is one remote-build delegation. A session owns its remote
// directory exclusively for its duration; concurrent sessions against the
// same host are not supported.
type Session struct {
	// ID identifies the session in diagnostics.
	ID string

	// LocalRoot is the project tree to mirror.
	LocalRoot string

	// RemoteDir is the remote working directory. It is wiped before every
	// sync, so partial state from an interrupted run is never trusted.
	RemoteDir string

	// RemoteArtifact is the path of the expected artifact on the remote
	// host after the build commands succeed.
	RemoteArtifact string

	// LocalArtifact is the final local path the artifact is retrieved to.
	LocalArtifact string

	host  Host
	state State
}

// NewSession creates an Idle session against host.
func NewSession(host Host, localRoot, remoteDir, remoteArtifact, localArtifact string) *Session {
	return &Session{
		ID:             uuid.New().String(),
		LocalRoot:      localRoot,
		RemoteDir:      remoteDir,
		RemoteArtifact: remoteArtifact,
		LocalArtifact:  localArtifact,
		host:           host,
		state:          Idle,
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	return s.state
}

// Sync wipes the remote working directory and mirrors the local tree into
// it. The wipe is mandatory: remote state must never be a mix of two
// different local trees.
func (s *Session) Sync(ctx context.Context) error {
	if s.state != Idle {
		return s.fail("sync", fmt.Errorf("cannot sync from state %s", s.state))
	}
	if err := s.host.Remove(ctx, s.RemoteDir); err != nil {
		return s.fail("sync", err)
	}
	if err := s.host.MirrorTree(ctx, s.LocalRoot, s.RemoteDir); err != nil {
		return s.fail("sync", err)
	}
	s.state = Synced
	return nil
}

// Build executes the fixed remote command sequence as one logical session.
// Any non-zero exit fails the session with the remote's diagnostic output.
func (s *Session) Build(ctx context.Context, commands []string) error {
	if s.state != Synced {
		return s.fail("build", fmt.Errorf("cannot build from state %s", s.state))
	}
	if len(commands) == 0 {
		return s.fail("build", fmt.Errorf("no remote build commands configured"))
	}
	for _, command := range commands {
		if err := s.host.Run(ctx, s.RemoteDir, command); err != nil {
			return s.fail("build", err)
		}
	}
	s.state = RemoteBuilt
	return nil
}

// Retrieve copies the expected artifact back into the local output
// directory. The copy lands under a temporary name and is renamed into
// place, so a failed retrieval never leaves a partial file at the final
// path. A missing remote artifact fails the session even though the remote
// commands reported success.
func (s *Session) Retrieve(ctx context.Context) error {
	if s.state != RemoteBuilt {
		return s.fail("retrieve", fmt.Errorf("cannot retrieve from state %s", s.state))
	}

	if err := os.MkdirAll(filepath.Dir(s.LocalArtifact), 0755); err != nil {
		return s.fail("retrieve", err)
	}

	staged := s.LocalArtifact + ".fetch-" + s.ID[:8]
	if err := s.host.Fetch(ctx, s.RemoteArtifact, staged); err != nil {
		os.Remove(staged)
		return s.fail("retrieve", fmt.Errorf("expected artifact %s: %w", s.RemoteArtifact, err))
	}
	if err := fsutil.Promote(staged, s.LocalArtifact); err != nil {
		os.Remove(staged)
		return s.fail("retrieve", err)
	}

	s.state = Retrieved
	return nil
}

// Execute drives a full session: sync, remote build, artifact retrieval.
// The remote directory is left in place afterwards for inspection.
func (s *Session) Execute(ctx context.Context, commands []string) error {
	if err := s.Sync(ctx); err != nil {
		return err
	}
	if err := s.Build(ctx, commands); err != nil {
		return err
	}
	return s.Retrieve(ctx)
}

func (s *Session) fail(stage string, err error) error {
	s.state = Failed
	return &SessionError{Session: s.ID, Stage: stage, Err: err}
}

// SessionError reports a failed remote-build session. It aborts just the
// dependent target; independent branches already scheduled may still
// complete.
type SessionError struct {
	Session string
	Stage   string
	Err     error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("remote session %s failed during %s: %v", e.Session, e.Stage, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsSessionError checks if an error is a *SessionError.
func IsSessionError(err error) bool {
	_, ok := err.(*SessionError)
	return ok
}
