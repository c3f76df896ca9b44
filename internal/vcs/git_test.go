package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a throwaway git repository with an identity configured so
// commits work without global config.
func initRepo(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	return New(dir)
}

func commitAll(t *testing.T, g *Git, message string) {
	t.Helper()
	for _, args := range [][]string{
		{"add", "-A"},
		{"commit", "-m", message},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = g.Dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}
}

func writeFile(t *testing.T, g *Git, name, content string) string {
	t.Helper()
	path := filepath.Join(g.Dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIsWorkspaceClean(t *testing.T) {
	g := initRepo(t)

	clean, err := g.IsWorkspaceClean()
	require.NoError(t, err)
	assert.True(t, clean, "fresh repository is clean")

	writeFile(t, g, "notes.txt", "draft")
	clean, err = g.IsWorkspaceClean()
	require.NoError(t, err)
	assert.False(t, clean, "untracked file makes the workspace dirty")

	commitAll(t, g, "add notes")
	clean, err = g.IsWorkspaceClean()
	require.NoError(t, err)
	assert.True(t, clean)

	writeFile(t, g, "notes.txt", "edited")
	clean, err = g.IsWorkspaceClean()
	require.NoError(t, err)
	assert.False(t, clean, "modified tracked file makes the workspace dirty")
}

func TestDirtyFiles(t *testing.T) {
	g := initRepo(t)

	out, err := g.DirtyFiles()
	require.NoError(t, err)
	assert.Empty(t, out)

	writeFile(t, g, "tracked.txt", "v1")
	commitAll(t, g, "add tracked")
	writeFile(t, g, "tracked.txt", "v2")
	writeFile(t, g, "new.txt", "untracked")

	out, err = g.DirtyFiles()
	require.NoError(t, err)
	assert.Contains(t, out, "Uncommitted changes:")
	assert.Contains(t, out, "M tracked.txt")
	assert.Contains(t, out, "Untracked files:")
	assert.Contains(t, out, "? new.txt")
}

func TestCommitFile_StagesOnlyTheNamedFile(t *testing.T) {
	g := initRepo(t)
	writeFile(t, g, "base.txt", "base")
	commitAll(t, g, "initial")

	changelog := writeFile(t, g, "CHANGELOG.txt", "Release 1.0")
	writeFile(t, g, "scratch.txt", "leftover")

	require.NoError(t, g.CommitFile(changelog, "Release 1.0"))

	// The changelog is committed, the unrelated file stays untracked.
	out, err := g.DirtyFiles()
	require.NoError(t, err)
	assert.NotContains(t, out, "CHANGELOG.txt")
	assert.Contains(t, out, "scratch.txt")

	log := exec.Command("git", "log", "-1", "--format=%s")
	log.Dir = g.Dir
	subject, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "Release 1.0\n", string(subject))
}

func TestCommitFile_FailsOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	g := New(t.TempDir())
	err := g.CommitFile("missing.txt", "nothing")
	require.Error(t, err)
}

func TestCreateSignedTag_ReportsSigningFailure(t *testing.T) {
	// Signing needs a configured key; a repository with signing disabled and
	// no key surfaces git's diagnostic instead of succeeding silently.
	g := initRepo(t)
	writeFile(t, g, "base.txt", "base")
	commitAll(t, g, "initial")

	cmd := exec.Command("git", "config", "user.signingkey", "")
	cmd.Dir = g.Dir
	require.NoError(t, cmd.Run())

	err := g.CreateSignedTag("v1.0", "Release 1.0")
	if err == nil {
		// A machine with a usable default key can legitimately sign.
		tag := exec.Command("git", "tag", "-l", "v1.0")
		tag.Dir = g.Dir
		out, tagErr := tag.Output()
		require.NoError(t, tagErr)
		assert.Contains(t, string(out), "v1.0")
		return
	}
	assert.Contains(t, err.Error(), "v1.0")
}
