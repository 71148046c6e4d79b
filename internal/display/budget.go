package display

import (
	"fmt"
	"strings"

	"github.com/pablasso/tasktree/internal/task"
)

// Limit overrides the number of rows the task list may occupy.
// Fixed wins over Func; with neither, the limit is max(5, rows-2).
type Limit struct {
	Fixed int
	Func  func(rows int) int
}

// Resolve returns the row limit for a terminal of the given height,
// or 0 when the list is unlimited.
func (l Limit) Resolve(rows int) int {
	if l.Fixed > 0 {
		return l.Fixed
	}
	if l.Func != nil {
		return max(0, l.Func(rows))
	}
	if rows <= 0 {
		return 0
	}
	return max(5, rows-2)
}

// Row is a visible node and its visible children. Node keeps the full
// child list so icons still reflect hidden children.
type Row struct {
	Node     task.Snapshot
	Children []Row
}

// Counts tallies hidden nodes by state.
type Counts struct {
	Loading   int
	Pending   int
	Completed int
}

func (c Counts) Total() int {
	return c.Loading + c.Pending + c.Completed
}

func (c *Counts) add(s task.State) {
	switch s {
	case task.StateLoading:
		c.Loading++
	case task.StatePending:
		c.Pending++
	default:
		c.Completed++
	}
}

// Summary is the line that stands in for hidden nodes.
func (c Counts) Summary() string {
	var parts []string
	if c.Loading > 0 {
		parts = append(parts, fmt.Sprintf("%d loading", c.Loading))
	}
	if c.Pending > 0 {
		parts = append(parts, fmt.Sprintf("%d queued", c.Pending))
	}
	if c.Completed > 0 {
		parts = append(parts, fmt.Sprintf("%d completed", c.Completed))
	}
	return fmt.Sprintf("(+ %d hidden: %s)", c.Total(), strings.Join(parts, ", "))
}

// Selection is the part of the tree a frame shows.
type Selection struct {
	Rows   []Row
	Hidden Counts
}

// measureFunc returns the rows a node's own lines occupy at a depth.
type measureFunc func(n task.Snapshot, depth int) int

type candidate struct {
	node   task.Snapshot
	depth  int
	parent int
	rows   int
}

// Select picks the nodes that fit in limit rows. A limit of 0 selects
// everything. When truncation is needed one row is reserved for the summary
// and nodes are taken greedily: active nodes first, then settled ones, each
// group in tree order. The first node that does not fit ends the selection.
func Select(nodes []task.Snapshot, limit int, measure measureFunc) Selection {
	var flat []candidate
	var walk func(list []task.Snapshot, depth, parent int)
	walk = func(list []task.Snapshot, depth, parent int) {
		for _, n := range list {
			flat = append(flat, candidate{node: n, depth: depth, parent: parent, rows: measure(n, depth)})
			walk(n.Children, depth+1, len(flat)-1)
		}
	}
	walk(nodes, 0, -1)

	included := make([]bool, len(flat))
	total := 0
	for _, c := range flat {
		total += c.rows
	}
	if limit <= 0 || total <= limit {
		for i := range included {
			included[i] = true
		}
		return buildSelection(nodes, flat, included)
	}

	order := make([]int, 0, len(flat))
	for i, c := range flat {
		if c.node.State.IsActive() {
			order = append(order, i)
		}
	}
	for i, c := range flat {
		if !c.node.State.IsActive() {
			order = append(order, i)
		}
	}

	budget := limit - 1
	used := 0
	for _, i := range order {
		if included[i] {
			continue
		}
		// A node brings along any ancestors not yet shown.
		cost := 0
		var chain []int
		for j := i; j >= 0 && !included[j]; j = flat[j].parent {
			cost += flat[j].rows
			chain = append(chain, j)
		}
		if used+cost > budget {
			break
		}
		used += cost
		for _, j := range chain {
			included[j] = true
		}
	}

	return buildSelection(nodes, flat, included)
}

func buildSelection(nodes []task.Snapshot, flat []candidate, included []bool) Selection {
	var sel Selection
	for i, c := range flat {
		if !included[i] {
			sel.Hidden.add(c.node.State)
		}
	}

	idx := 0
	var build func(list []task.Snapshot) []Row
	build = func(list []task.Snapshot) []Row {
		var rows []Row
		for _, n := range list {
			visible := included[idx]
			idx++
			children := build(n.Children)
			if visible {
				rows = append(rows, Row{Node: n, Children: children})
			}
		}
		return rows
	}
	sel.Rows = build(nodes)
	return sel
}
