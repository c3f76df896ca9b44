// Package graph holds the registry of named build targets and resolves a
// requested target into an executable dependency order.
package graph

import (
	"context"
	"fmt"
)

// Action is the work a target performs when it is stale. Actions are
// blocking: they spawn external tools and wait. A nil Action marks a pure
// grouping target.
type Action func(ctx context.Context) error

// Target is a named unit of work. A phony target has no corresponding
// filesystem artifact and is always considered stale. A file-backed target's
// artifact path is its name.
type Target struct {
	// Name identifies the target. For file-backed targets it is also the
	// artifact path.
	Name string

	// Deps are the names of prerequisite targets. Every name must be
	// registered before Resolve is called.
	Deps []string

	// Files are prerequisite file paths that are not targets themselves
	// (sources, manifests, licensing files). They gate staleness only.
	Files []string

	// Action produces the artifact (or performs the phony work).
	Action Action

	// Phony marks a target with no artifact; it executes on every run.
	Phony bool
}

// Registry is the set of registered targets. Registration happens up front;
// Resolve then walks the prerequisite relation for one requested target.
type Registry struct {
	targets map[string]*Target
}

// NewRegistry creates an empty target registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]*Target)}
}

// Register adds a target. Registering the same name twice is a
// configuration error.
func (r *Registry) Register(t Target) error {
	if t.Name == "" {
		return fmt.Errorf("target name cannot be empty")
	}
	if _, exists := r.targets[t.Name]; exists {
		return fmt.Errorf("duplicate target '%s'", t.Name)
	}
	copied := t
	r.targets[t.Name] = &copied
	return nil
}

// Lookup returns a registered target by name.
func (r *Registry) Lookup(name string) (*Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// Names returns the registered target names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	return names
}

// Resolve computes the transitive prerequisite closure of name and returns
// it as BuildNodes in post-order: every node appears after all of its
// prerequisites, and each reachable target appears exactly once even when it
// is required via several paths. It fails with *UnknownTargetError for an
// unregistered name and *CycleError if the prerequisite relation is cyclic.
func (r *Registry) Resolve(name string) ([]*BuildNode, error) {
	if _, ok := r.targets[name]; !ok {
		return nil, &UnknownTargetError{Name: name}
	}

	// Classic three-color DFS: visiting tracks the current recursion stack
	// so that revisiting a member means the relation is cyclic, while done
	// nodes are deduplicated (a diamond dependency must not double-build).
	nodes := make(map[string]*BuildNode)
	visiting := make(map[string]bool)
	var stack []string
	var order []*BuildNode

	var visit func(name string) (*BuildNode, error)
	visit = func(name string) (*BuildNode, error) {
		if node, ok := nodes[name]; ok {
			return node, nil
		}
		if visiting[name] {
			return nil, &CycleError{Chain: append(cycleChain(stack, name), name)}
		}

		target, ok := r.targets[name]
		if !ok {
			return nil, &UnknownTargetError{Name: name}
		}

		visiting[name] = true
		stack = append(stack, name)

		node := &BuildNode{Target: target, State: StateUnknown}
		for _, dep := range target.Deps {
			depNode, err := visit(dep)
			if err != nil {
				return nil, err
			}
			node.Deps = append(node.Deps, depNode)
		}

		stack = stack[:len(stack)-1]
		delete(visiting, name)

		nodes[name] = node
		order = append(order, node)
		return node, nil
	}

	if _, err := visit(name); err != nil {
		return nil, err
	}
	return order, nil
}

// cycleChain trims the recursion stack down to the segment that forms the
// reported cycle.
func cycleChain(stack []string, start string) []string {
	for i, name := range stack {
		if name == start {
			return append([]string(nil), stack[i:]...)
		}
	}
	return append([]string(nil), stack...)
}
