package task

import "time"

// Snapshot is an immutable copy of a node and its subtree.
type Snapshot struct {
	ID              string
	Title           string
	State           State
	Status          string
	Output          string
	Stream          []string
	StreamTruncated int
	Elapsed         time.Duration
	HasElapsed      bool
	Children        []Snapshot
}

func snapshotNodes(nodes []*Node, now time.Time, implicitTimers bool) []Snapshot {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Snapshot, len(nodes))
	for i, n := range nodes {
		s := Snapshot{
			ID:       n.id,
			Title:    n.title,
			State:    n.state,
			Status:   n.status,
			Output:   n.output,
			Children: snapshotNodes(n.children, now, implicitTimers),
		}
		if n.stream != nil {
			s.Stream = append([]string(nil), n.stream.lines...)
			s.StreamTruncated = n.stream.truncated
		}
		s.Elapsed, s.HasElapsed = n.elapsedAt(now, implicitTimers)
		out[i] = s
	}
	return out
}

func (n *Node) elapsedAt(now time.Time, implicitTimers bool) (time.Duration, bool) {
	switch {
	case n.hasElapsed:
		return n.elapsed, true
	case !n.startedAt.IsZero():
		return now.Sub(n.startedAt), true
	case implicitTimers && !n.loadingAt.IsZero():
		end := now
		if !n.finishedAt.IsZero() {
			end = n.finishedAt
		}
		return end.Sub(n.loadingAt), true
	}
	return 0, false
}

// Done reports whether every node is terminal, recursively.
// An empty list is done.
func Done(nodes []Snapshot) bool {
	for _, n := range nodes {
		if !n.State.IsTerminal() || !Done(n.Children) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the forest.
func Count(nodes []Snapshot) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Children)
	}
	return total
}
