package task

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Observer is notified after every mutation of the tree.
// RequestRender must not block; it is called outside the tree lock.
type Observer interface {
	RequestRender()
}

// Tree is the ordered list of root nodes shared by every task of a run.
// All nodes of a tree are guarded by the tree's lock.
type Tree struct {
	mu       sync.RWMutex
	roots    []*Node
	observer Observer
	now      func() time.Time
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{now: time.Now}
}

// SetObserver replaces the render observer. A nil observer disables notifications.
func (t *Tree) SetObserver(o Observer) {
	t.mu.Lock()
	t.observer = o
	t.mu.Unlock()
}

// SetClock overrides the time source (tests).
func (t *Tree) SetClock(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

func (t *Tree) notify() {
	t.mu.RLock()
	o := t.observer
	t.mu.RUnlock()
	if o != nil {
		o.RequestRender()
	}
}

// Add appends a pending node under parent, or at root level when parent is nil.
func (t *Tree) Add(parent *Node, title string) *Node {
	n := &Node{
		tree:   t,
		parent: parent,
		id:     uuid.NewString(),
		title:  title,
		state:  StatePending,
	}

	t.mu.Lock()
	if parent == nil {
		t.roots = append(t.roots, n)
	} else {
		parent.children = append(parent.children, n)
	}
	t.mu.Unlock()

	t.notify()
	return n
}

// Remove detaches n from its parent (or the root list) by identity.
// It returns false when n was not attached.
func (t *Tree) Remove(n *Node) bool {
	t.mu.Lock()
	var removed bool
	if n.parent == nil {
		t.roots, removed = removeNode(t.roots, n)
	} else {
		n.parent.children, removed = removeNode(n.parent.children, n)
	}
	t.mu.Unlock()

	if removed {
		t.notify()
	}
	return removed
}

func removeNode(list []*Node, n *Node) ([]*Node, bool) {
	for i, candidate := range list {
		if candidate == n {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

// Len returns the number of root nodes.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.roots)
}

// Roots returns a copy of the root list.
func (t *Tree) Roots() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Node(nil), t.roots...)
}

// Done reports whether every node of the tree is terminal.
func (t *Tree) Done() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return nodesDone(t.roots)
}

func nodesDone(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.state.IsTerminal() || !nodesDone(n.children) {
			return false
		}
	}
	return true
}

// Snapshot copies the tree for rendering. When implicitTimers is set, nodes
// without a manual stopwatch report the time spent since they started loading.
func (t *Tree) Snapshot(implicitTimers bool) []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return snapshotNodes(t.roots, t.now(), implicitTimers)
}
