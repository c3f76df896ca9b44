package graph

// State is the freshness of a BuildNode during one run.
type State int

const (
	// StateUnknown means staleness has not been evaluated yet.
	StateUnknown State = iota

	// StateStale means the node's action must run.
	StateStale

	// StateFresh means the node was up to date and its action was skipped.
	StateFresh

	// StateBuilt means the node's action ran to completion this run.
	StateBuilt

	// StateFailed means the node's action returned an error.
	StateFailed
)

// String returns a short human-readable form of the state.
func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateStale:
		return "stale"
	case StateFresh:
		return "fresh"
	case StateBuilt:
		return "built"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// BuildNode is a Target plus its resolved freshness state for one run. Nodes
// are created when the graph is walked for a requested target, owned by the
// scheduling engine for the duration of that run, and discarded afterwards.
type BuildNode struct {
	Target *Target
	Deps   []*BuildNode
	State  State
}

// Name returns the underlying target name.
func (n *BuildNode) Name() string {
	return n.Target.Name
}
