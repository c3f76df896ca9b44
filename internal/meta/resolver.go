package meta

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dyluth/distforge/internal/run"
)

// versionPattern matches the release version shapes the packaging formats
// accept: major.minor with an optional patch component.
var versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// Metadata is the canonical identity of the project being packaged. It is
// resolved once per invocation and every artifact name is a pure function of
// this record.
type Metadata struct {
	Name        string
	Version     string
	PlatformTag string
}

// Resolver queries the project's own build description for its metadata.
// The query is performed at most once; repeated Resolve calls return the
// cached record.
type Resolver struct {
	// Interpreter is the language interpreter used to run the setup script.
	Interpreter string

	// Script is the setup script path relative to Root (typically setup.py).
	Script string

	// Root is the project root directory.
	Root string

	runner run.Runner

	resolved bool
	cached   Metadata
}

// NewResolver creates a Resolver for the project rooted at root.
func NewResolver(runner run.Runner, root, interpreter, script string) *Resolver {
	return &Resolver{
		Interpreter: interpreter,
		Script:      script,
		Root:        root,
		runner:      runner,
	}
}

// Resolve queries the setup script for the project name and version and
// derives the interpreter's platform tag. The result is cached for the rest
// of the run. Failures are reported as *Error: without metadata nothing can
// be named, so callers treat this as fatal.
func (r *Resolver) Resolve(ctx context.Context) (Metadata, error) {
	if r.resolved {
		return r.cached, nil
	}

	output, err := r.runner.Output(ctx, r.Root, r.Interpreter, r.Script, "--name", "--version")
	if err != nil {
		return Metadata{}, &Error{Reason: "project description query failed", Err: err}
	}

	lines := nonEmptyLines(string(output))
	if len(lines) != 2 {
		return Metadata{}, &Error{
			Reason: fmt.Sprintf("expected name and version lines from '%s --name --version', got %d lines", r.Script, len(lines)),
		}
	}

	name, version := lines[0], lines[1]
	if name == "" {
		return Metadata{}, &Error{Reason: "project name is empty"}
	}
	if !versionPattern.MatchString(version) {
		return Metadata{}, &Error{
			Reason: fmt.Sprintf("invalid version string '%s' (expected major.minor or major.minor.patch)", version),
		}
	}

	tag, err := r.platformTag(ctx)
	if err != nil {
		return Metadata{}, err
	}

	r.cached = Metadata{Name: name, Version: version, PlatformTag: tag}
	r.resolved = true
	return r.cached, nil
}

// platformTag asks the interpreter for its py{major}.{minor} tag, the form
// the egg format embeds in its filename.
func (r *Resolver) platformTag(ctx context.Context) (string, error) {
	output, err := r.runner.Output(ctx, r.Root, r.Interpreter,
		"-c", `import sys; sys.stdout.write("py%d.%d" % sys.version_info[:2])`)
	if err != nil {
		return "", &Error{Reason: "failed to query interpreter platform tag", Err: err}
	}

	tag := strings.TrimSpace(string(output))
	if tag == "" {
		return "", &Error{Reason: "interpreter returned an empty platform tag"}
	}
	return tag, nil
}

// RegisterManifest performs the one-time registration step that generates
// the project's source file manifest. On success it returns the manifest
// path. Failure is not fatal: it returns ok=false and targets that need the
// manifest degrade to always-stale.
func (r *Resolver) RegisterManifest(ctx context.Context, m Metadata) (path string, ok bool) {
	if err := r.runner.Run(ctx, r.Root, r.Interpreter, r.Script, "egg_info"); err != nil {
		return "", false
	}

	path = filepath.Join(r.Root, m.Name+".egg-info", "SOURCES.txt")
	return path, true
}

// Error reports that project metadata could not be resolved.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata resolution failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("metadata resolution failed: %s", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsMetadataError checks if an error is a metadata *Error.
func IsMetadataError(err error) bool {
	_, ok := err.(*Error)
	return ok
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
