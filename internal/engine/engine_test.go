package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/distforge/internal/graph"
)

// actionLog records which targets executed, safely across workers.
type actionLog struct {
	mu    sync.Mutex
	order []string
}

func (l *actionLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = append(l.order, name)
}

func (l *actionLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}

func (l *actionLog) count(name string) int {
	n := 0
	for _, entry := range l.names() {
		if entry == name {
			n++
		}
	}
	return n
}

// fileTarget registers a file-backed target whose action writes its own
// artifact and records the execution.
func fileTarget(t *testing.T, r *graph.Registry, log *actionLog, path string, files []string, deps ...string) {
	t.Helper()
	require.NoError(t, r.Register(graph.Target{
		Name:  path,
		Deps:  deps,
		Files: files,
		Action: func(ctx context.Context) error {
			log.record(path)
			return os.WriteFile(path, []byte("artifact"), 0644)
		},
	}))
}

func setTime(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}

func writeFile(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("input"), 0644))
	setTime(t, path, at)
}

func runOnce(t *testing.T, r *graph.Registry, name string, workers int) error {
	t.Helper()
	nodes, err := r.Resolve(name)
	require.NoError(t, err)
	return New(workers).Run(context.Background(), nodes)
}

func TestRun_UpToDateArtifactIsNotReExecuted(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "out.tar.gz")
	input := filepath.Join(dir, "input.txt")
	base := time.Now().Add(-time.Hour)
	writeFile(t, input, base)

	log := &actionLog{}
	r := graph.NewRegistry()
	fileTarget(t, r, log, artifact, []string{input})

	require.NoError(t, runOnce(t, r, artifact, 1))
	assert.Equal(t, 1, log.count(artifact), "missing artifact builds once")

	require.NoError(t, runOnce(t, r, artifact, 1))
	assert.Equal(t, 1, log.count(artifact), "up-to-date artifact must not re-execute")
}

func TestRun_TouchedInputRebuildsOnlyItsDependents(t *testing.T) {
	// a <- b <- c, with d independent. Touching b's input rebuilds b and c
	// but leaves a and d untouched.
	dir := t.TempDir()
	a := filepath.Join(dir, "a.out")
	b := filepath.Join(dir, "b.out")
	c := filepath.Join(dir, "c.out")
	d := filepath.Join(dir, "d.out")
	inputB := filepath.Join(dir, "b.in")

	base := time.Now().Add(-time.Hour)
	writeFile(t, inputB, base)

	log := &actionLog{}
	r := graph.NewRegistry()
	fileTarget(t, r, log, a, nil)
	fileTarget(t, r, log, b, []string{inputB}, a)
	fileTarget(t, r, log, c, nil, b)
	fileTarget(t, r, log, d, nil)
	require.NoError(t, r.Register(graph.Target{Name: "all", Phony: true, Deps: []string{c, d}}))

	require.NoError(t, runOnce(t, r, "all", 2))
	require.Equal(t, 1, log.count(a))
	require.Equal(t, 1, log.count(d))

	// Pin mtimes so the ordering is unambiguous, then touch b's input.
	setTime(t, a, base)
	setTime(t, b, base.Add(time.Minute))
	setTime(t, c, base.Add(2*time.Minute))
	setTime(t, d, base)
	writeFile(t, inputB, base.Add(3*time.Minute))

	require.NoError(t, runOnce(t, r, "all", 2))
	assert.Equal(t, 1, log.count(a), "untouched prerequisite must stay fresh")
	assert.Equal(t, 1, log.count(d), "unrelated branch must stay untouched")
	assert.Equal(t, 2, log.count(b), "target with newer input rebuilds")
	assert.Equal(t, 2, log.count(c), "transitive dependent rebuilds")
}

func TestRun_PhonyAlwaysExecutes(t *testing.T) {
	log := &actionLog{}
	r := graph.NewRegistry()
	require.NoError(t, r.Register(graph.Target{
		Name:  "clean",
		Phony: true,
		Action: func(ctx context.Context) error {
			log.record("clean")
			return nil
		},
	}))

	require.NoError(t, runOnce(t, r, "clean", 1))
	require.NoError(t, runOnce(t, r, "clean", 1))
	assert.Equal(t, 2, log.count("clean"))
}

func TestRun_FailureAbortsDependentsKeepsArtifacts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.out")
	c := filepath.Join(dir, "c.out")

	log := &actionLog{}
	r := graph.NewRegistry()
	fileTarget(t, r, log, a, nil)

	boom := errors.New("tool exited 1")
	require.NoError(t, r.Register(graph.Target{
		Name: filepath.Join(dir, "b.out"),
		Deps: []string{a},
		Action: func(ctx context.Context) error {
			return boom
		},
	}))
	fileTarget(t, r, log, c, nil, filepath.Join(dir, "b.out"))

	err := runOnce(t, r, c, 1)
	require.Error(t, err)

	var failure *ActionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, filepath.Join(dir, "b.out"), failure.Target)
	assert.ErrorIs(t, failure, boom)

	// The sibling built before the failure keeps its artifact; the
	// dependent never ran.
	assert.FileExists(t, a)
	assert.Equal(t, 0, log.count(c))
}

func TestRun_PrerequisitesCompleteBeforeDependents(t *testing.T) {
	dir := t.TempDir()
	log := &actionLog{}
	r := graph.NewRegistry()

	leaves := []string{
		filepath.Join(dir, "l1.out"),
		filepath.Join(dir, "l2.out"),
		filepath.Join(dir, "l3.out"),
	}
	for _, leaf := range leaves {
		fileTarget(t, r, log, leaf, nil)
	}
	top := filepath.Join(dir, "top.out")
	fileTarget(t, r, log, top, nil, leaves...)

	require.NoError(t, runOnce(t, r, top, 3))

	order := log.names()
	require.Len(t, order, 4)
	assert.Equal(t, top, order[len(order)-1], "dependent runs strictly after all prerequisites")
}

func TestRun_RespectsContextCancellation(t *testing.T) {
	r := graph.NewRegistry()
	require.NoError(t, r.Register(graph.Target{
		Name:  "slow",
		Phony: true,
		Action: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	nodes, err := r.Resolve("slow")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, New(2).Run(ctx, nodes))
}

func TestPlan_MarksStaleAndFreshWithoutExecuting(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh.out")
	missing := filepath.Join(dir, "missing.out")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0644))

	log := &actionLog{}
	r := graph.NewRegistry()
	fileTarget(t, r, log, fresh, nil)
	fileTarget(t, r, log, missing, nil)
	require.NoError(t, r.Register(graph.Target{Name: "all", Phony: true, Deps: []string{fresh, missing}}))

	nodes, err := r.Resolve("all")
	require.NoError(t, err)
	Plan(nodes)

	states := make(map[string]graph.State)
	for _, n := range nodes {
		states[n.Name()] = n.State
	}
	assert.Equal(t, graph.StateFresh, states[fresh])
	assert.Equal(t, graph.StateStale, states[missing])
	assert.Equal(t, graph.StateStale, states["all"], "phony plans stale")
	assert.Empty(t, log.names(), "planning must not execute actions")
}
