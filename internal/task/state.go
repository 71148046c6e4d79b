// Package task holds the task tree observed by the renderer.
package task

// State is the lifecycle state of a task node.
type State int

const (
	StatePending State = iota
	StateLoading
	StateError
	StateWarning
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateWarning:
		return "warning"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the node has settled.
func (s State) IsTerminal() bool {
	return s == StateError || s == StateWarning || s == StateSuccess
}

// IsActive reports whether the node is still queued or doing work.
func (s State) IsActive() bool {
	return s == StatePending || s == StateLoading
}
