// Package engine schedules and executes resolved build nodes. Prerequisites
// run strictly before their dependents; independent subtrees run in parallel
// on a bounded worker pool, since packaging backends are process-spawn heavy.
package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dyluth/distforge/internal/graph"
)

// DefaultWorkers bounds parallel execution when no worker count is
// configured.
const DefaultWorkers = 4

// Engine executes one resolved target closure per Run call. Engines own the
// BuildNodes they are given for the duration of the run.
type Engine struct {
	// Workers bounds how many actions may run concurrently.
	Workers int

	// Logf receives progress lines. Nil disables progress output.
	Logf func(format string, args ...any)
}

// New creates an Engine with the given worker bound. Values below one fall
// back to DefaultWorkers.
func New(workers int) *Engine {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Engine{Workers: workers}
}

// Run executes the nodes in dependency order, skipping up-to-date nodes.
// The slice must be the post-order returned by Registry.Resolve. On the
// first action failure remaining unstarted work is abandoned; artifacts
// already produced stay in place.
func (e *Engine) Run(ctx context.Context, nodes []*graph.BuildNode) error {
	if len(nodes) == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	remaining := make(map[*graph.BuildNode]int, len(nodes))
	dependents := make(map[*graph.BuildNode][]*graph.BuildNode, len(nodes))
	for _, n := range nodes {
		remaining[n] = len(n.Deps)
		for _, dep := range n.Deps {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	// ready carries nodes whose prerequisites are all terminal. The buffer
	// holds every node so completions never block on the channel.
	ready := make(chan *graph.BuildNode, len(nodes))
	completed := 0

	finish := func(n *graph.BuildNode) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		for _, dependent := range dependents[n] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready <- dependent
			}
		}
		if completed == len(nodes) {
			close(ready)
		}
	}

	for _, n := range nodes {
		if len(n.Deps) == 0 {
			ready <- n
		}
	}

	for i := 0; i < e.Workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case n, ok := <-ready:
					if !ok {
						return nil
					}
					if err := e.execute(ctx, n); err != nil {
						return err
					}
					finish(n)
				}
			}
		})
	}

	return group.Wait()
}

// execute evaluates one node's staleness and runs its action if needed. All
// prerequisites are terminal by the time a node reaches a worker.
func (e *Engine) execute(ctx context.Context, n *graph.BuildNode) error {
	stale, reason := isStale(n, func(dep *graph.BuildNode) bool {
		return dep.State == graph.StateBuilt
	})
	if !stale {
		n.State = graph.StateFresh
		e.logf("%s: up to date", n.Name())
		return nil
	}

	n.State = graph.StateStale
	if n.Target.Action != nil {
		e.logf("%s: building (%s)", n.Name(), reason)
		if err := n.Target.Action(ctx); err != nil {
			n.State = graph.StateFailed
			return &ActionFailure{Target: n.Name(), Err: err}
		}
	}
	n.State = graph.StateBuilt
	return nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}

// ActionFailure reports a failed target action together with the target's
// identity. The wrapped error carries the external tool's diagnostic output.
type ActionFailure struct {
	Target string
	Err    error
}

func (e *ActionFailure) Error() string {
	return fmt.Sprintf("target '%s' failed: %v", e.Target, e.Err)
}

func (e *ActionFailure) Unwrap() error {
	return e.Err
}

// IsActionFailure checks if an error is an *ActionFailure.
func IsActionFailure(err error) bool {
	_, ok := err.(*ActionFailure)
	return ok
}
