package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, r *Registry, name string, deps ...string) {
	t.Helper()
	require.NoError(t, r.Register(Target{Name: name, Deps: deps, Phony: true}))
}

func names(nodes []*BuildNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name())
	}
	return out
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Target{Name: "a"}))

	err := r.Register(Target{Name: "a"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate target 'a'")
}

func TestRegister_EmptyName(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Target{}))
}

func TestResolve_PostOrder(t *testing.T) {
	// dist -> {tar, egg}, tar -> manifest, egg -> manifest
	r := NewRegistry()
	register(t, r, "manifest")
	register(t, r, "tar", "manifest")
	register(t, r, "egg", "manifest")
	register(t, r, "dist", "tar", "egg")

	nodes, err := r.Resolve("dist")
	require.NoError(t, err)

	order := names(nodes)
	assert.Len(t, order, 4, "each reachable target appears exactly once")

	position := make(map[string]int)
	for i, name := range order {
		position[name] = i
	}

	// Every target appears after all its prerequisites.
	assert.Less(t, position["manifest"], position["tar"])
	assert.Less(t, position["manifest"], position["egg"])
	assert.Less(t, position["tar"], position["dist"])
	assert.Less(t, position["egg"], position["dist"])
}

func TestResolve_DiamondDeduplicates(t *testing.T) {
	// top -> {left, right} -> base: base must appear once
	r := NewRegistry()
	register(t, r, "base")
	register(t, r, "left", "base")
	register(t, r, "right", "base")
	register(t, r, "top", "left", "right")

	nodes, err := r.Resolve("top")
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, name := range names(nodes) {
		seen[name]++
	}
	assert.Equal(t, 1, seen["base"], "diamond dependency must not double-build")
	assert.Len(t, nodes, 4)
}

func TestResolve_SharedNodesAreIdentical(t *testing.T) {
	r := NewRegistry()
	register(t, r, "base")
	register(t, r, "left", "base")
	register(t, r, "right", "base")
	register(t, r, "top", "left", "right")

	nodes, err := r.Resolve("top")
	require.NoError(t, err)

	byName := make(map[string]*BuildNode)
	for _, n := range nodes {
		byName[n.Name()] = n
	}
	// Both dependents must share one BuildNode so state propagates.
	assert.Same(t, byName["left"].Deps[0], byName["right"].Deps[0])
}

func TestResolve_Unknown(t *testing.T) {
	r := NewRegistry()
	register(t, r, "a")

	_, err := r.Resolve("nope")
	require.Error(t, err)
	var unknown *UnknownTargetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
	assert.True(t, IsConfigurationError(err))
}

func TestResolve_UnknownPrerequisite(t *testing.T) {
	r := NewRegistry()
	register(t, r, "a", "missing")

	_, err := r.Resolve("a")
	var unknown *UnknownTargetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)
}

func TestResolve_SelfCycle(t *testing.T) {
	r := NewRegistry()
	register(t, r, "a", "a")

	_, err := r.Resolve("a")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.True(t, IsConfigurationError(err))
}

func TestResolve_LongCycle(t *testing.T) {
	// a -> b -> c -> a, reached through an innocent entry point
	r := NewRegistry()
	register(t, r, "a", "b")
	register(t, r, "b", "c")
	register(t, r, "c", "a")
	register(t, r, "entry", "a")

	_, err := r.Resolve("entry")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.GreaterOrEqual(t, len(cycle.Chain), 4)
	assert.Equal(t, cycle.Chain[0], cycle.Chain[len(cycle.Chain)-1])
}

func TestResolve_AcyclicSubtreeOfCyclicGraph(t *testing.T) {
	// The cycle sits outside the requested closure; resolution succeeds.
	r := NewRegistry()
	register(t, r, "x", "y")
	register(t, r, "y", "x")
	register(t, r, "ok")

	_, err := r.Resolve("ok")
	assert.NoError(t, err)
}
