package engine

import (
	"github.com/dyluth/distforge/internal/fsutil"
	"github.com/dyluth/distforge/internal/graph"
)

// isStale decides whether a node's action must run. rebuilt reports whether
// a prerequisite node was (or will be) rebuilt this run.
//
// A file-backed target is stale if its artifact does not exist, if any
// prerequisite file or prerequisite artifact is strictly newer than the
// artifact, or if any prerequisite target was rebuilt this run. A phony
// target is always stale.
func isStale(n *graph.BuildNode, rebuilt func(*graph.BuildNode) bool) (bool, string) {
	if n.Target.Phony {
		return true, "phony target"
	}

	for _, dep := range n.Deps {
		if rebuilt(dep) {
			return true, "prerequisite '" + dep.Name() + "' was rebuilt"
		}
	}

	artifactTime, exists := fsutil.ModTime(n.Target.Name)
	if !exists {
		return true, "artifact missing"
	}

	for _, dep := range n.Deps {
		if dep.Target.Phony {
			continue
		}
		if depTime, ok := fsutil.ModTime(dep.Target.Name); ok && depTime.After(artifactTime) {
			return true, "prerequisite '" + dep.Name() + "' is newer"
		}
	}

	for _, file := range n.Target.Files {
		fileTime, ok := fsutil.ModTime(file)
		if !ok {
			// A missing input cannot prove freshness; rebuild.
			return true, "input '" + file + "' missing"
		}
		if fileTime.After(artifactTime) {
			return true, "input '" + file + "' is newer"
		}
	}

	return false, ""
}

// Plan evaluates staleness for a resolved node list without executing
// anything. Nodes end up StateStale or StateFresh, with staleness assumed to
// propagate: a stale prerequisite is treated as one that will be rebuilt.
// The nodes must be in post-order, as returned by Registry.Resolve.
func Plan(nodes []*graph.BuildNode) {
	for _, n := range nodes {
		stale, _ := isStale(n, func(dep *graph.BuildNode) bool {
			return dep.State == graph.StateStale
		})
		if stale {
			n.State = graph.StateStale
		} else {
			n.State = graph.StateFresh
		}
	}
}
