package task

import (
	"time"
)

// Node is one entry of the task tree.
type Node struct {
	tree     *Tree
	parent   *Node
	id       string
	title    string
	state    State
	status   string
	output   string
	children []*Node
	stream   *streamBuffer

	// Manual stopwatch.
	startedAt  time.Time
	elapsed    time.Duration
	hasElapsed bool

	// Implicit timer, captured on state transitions.
	loadingAt  time.Time
	finishedAt time.Time
}

// update runs fn under the tree lock and then requests a redraw.
func (n *Node) update(fn func()) {
	n.tree.mu.Lock()
	fn()
	n.tree.mu.Unlock()
	n.tree.notify()
}

func (n *Node) read(fn func()) {
	n.tree.mu.RLock()
	fn()
	n.tree.mu.RUnlock()
}

// ID returns the node's unique identifier.
func (n *Node) ID() string { return n.id }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Title() (title string) {
	n.read(func() { title = n.title })
	return title
}

func (n *Node) State() (state State) {
	n.read(func() { state = n.state })
	return state
}

func (n *Node) Status() (status string) {
	n.read(func() { status = n.status })
	return status
}

func (n *Node) Output() (output string) {
	n.read(func() { output = n.output })
	return output
}

// Children returns a copy of the child list.
func (n *Node) Children() (children []*Node) {
	n.read(func() { children = append([]*Node(nil), n.children...) })
	return children
}

func (n *Node) SetTitle(title string) {
	n.update(func() { n.title = title })
}

// SetStatus sets the inline annotation; an empty string clears it.
func (n *Node) SetStatus(status string) {
	n.update(func() { n.status = status })
}

func (n *Node) SetOutput(output string) {
	n.update(func() { n.output = output })
}

// SetWarning marks the node as warned. An empty message only clears the output.
func (n *Node) SetWarning(msg string) {
	n.update(func() {
		n.state = StateWarning
		n.output = msg
	})
}

// SetError marks the node as failed. A nil error only clears the output;
// the node keeps counting as done.
func (n *Node) SetError(err error) {
	n.update(func() {
		n.state = StateError
		if err != nil {
			n.output = err.Error()
		} else {
			n.output = ""
		}
	})
}

// Start moves a pending node to loading.
func (n *Node) Start() {
	n.update(func() {
		if n.state != StatePending {
			return
		}
		n.state = StateLoading
		n.loadingAt = n.tree.now()
	})
}

// Finish settles the node once its function returned. Success is only
// assigned when no warning or error was set while it ran.
func (n *Node) Finish(err error) {
	n.update(func() {
		n.finishedAt = n.tree.now()
		if err != nil {
			n.state = StateError
			n.output = err.Error()
			return
		}
		if n.state == StateLoading {
			n.state = StateSuccess
		}
	})
}

// StartTime starts the manual stopwatch.
func (n *Node) StartTime() {
	n.update(func() {
		n.startedAt = n.tree.now()
		n.hasElapsed = false
	})
}

// StopTime freezes the manual stopwatch and returns the elapsed time.
// Without a prior StartTime the elapsed time is zero.
func (n *Node) StopTime() time.Duration {
	var elapsed time.Duration
	n.update(func() {
		if !n.startedAt.IsZero() {
			elapsed = n.tree.now().Sub(n.startedAt)
		}
		n.startedAt = time.Time{}
		n.elapsed = elapsed
		n.hasElapsed = true
	})
	return elapsed
}
