// Package release implements the post-build release pipeline and the
// publish workflow that pushes every distribution format to its destination.
package release

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/distforge/internal/meta"
)

// WorkingTree is the version-control collaborator the release pipeline
// depends on. The production implementation lives in internal/vcs.
type WorkingTree interface {
	IsWorkspaceClean() (bool, error)
	DirtyFiles() (string, error)
	CommitFile(path, message string) error
	CreateSignedTag(name, message string) error
}

// Releaser runs the linear release workflow: precondition check, changelog
// update, one-file commit, signed tag.
type Releaser struct {
	Tree      WorkingTree
	Changelog string

	// Now supplies the changelog entry date. Nil means time.Now.
	Now func() time.Time
}

// Release performs a release for the resolved version. It fails fast with
// *DirtyWorkingTreeError if the working tree has uncommitted changes; the
// precondition is never auto-resolved and nothing is modified before it
// passes.
func (r *Releaser) Release(ctx context.Context, m meta.Metadata) error {
	clean, err := r.Tree.IsWorkspaceClean()
	if err != nil {
		return fmt.Errorf("failed to check working tree: %w", err)
	}
	if !clean {
		details, _ := r.Tree.DirtyFiles()
		return &DirtyWorkingTreeError{Details: details}
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	changed, err := UpdateChangelog(r.Changelog, m.Version, now())
	if err != nil {
		return fmt.Errorf("failed to update changelog: %w", err)
	}

	// An unchanged changelog means a re-run after a failed tag step; skip
	// the empty commit and go straight to tagging.
	if changed {
		if err := r.Tree.CommitFile(r.Changelog, fmt.Sprintf("Release %s", m.Version)); err != nil {
			return err
		}
	}

	tag := "v" + m.Version
	if err := r.Tree.CreateSignedTag(tag, fmt.Sprintf("Release %s %s", m.Name, m.Version)); err != nil {
		return err
	}
	return nil
}

// DirtyWorkingTreeError indicates the release precondition failed: the
// working tree has uncommitted changes. No release action has been taken.
type DirtyWorkingTreeError struct {
	Details string
}

func (e *DirtyWorkingTreeError) Error() string {
	if e.Details == "" {
		return "working tree has uncommitted changes"
	}
	return "working tree has uncommitted changes\n" + e.Details
}

// IsDirtyWorkingTreeError checks if an error is a *DirtyWorkingTreeError.
func IsDirtyWorkingTreeError(err error) bool {
	_, ok := err.(*DirtyWorkingTreeError)
	return ok
}
