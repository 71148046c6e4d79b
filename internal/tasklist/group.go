package tasklist

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/pablasso/tasktree/internal/executor"
	"github.com/pablasso/tasktree/internal/task"
)

// Item is one task of a group.
type Item struct {
	Title string
	Run   Func
}

// GroupOptions controls how a group runs. See executor.MapOptions.
type GroupOptions struct {
	Concurrency int
	StopOnError bool
}

// Result is a finished task.
type Result struct {
	list *List
	node *task.Node
}

// State returns the task's final state.
func (r *Result) State() task.State { return r.node.State() }

// Title returns the task's title.
func (r *Result) Title() string { return r.node.Title() }

// Clear removes the task from the tree. Clearing the last root task erases
// the tree from the terminal.
func (r *Result) Clear() { r.list.remove(r.node) }

// GroupResult holds the tasks of a group, in registration order.
type GroupResult struct {
	list    *List
	Results []*Result
}

// Clear removes every task of the group.
func (g *GroupResult) Clear() {
	nodes := make([]*task.Node, len(g.Results))
	for i, r := range g.Results {
		nodes[i] = r.node
	}
	g.list.remove(nodes...)
}

func (l *List) group(ctx context.Context, parent *task.Node, items []Item, opts GroupOptions) (*GroupResult, error) {
	res := &GroupResult{list: l, Results: make([]*Result, 0, len(items))}
	for _, item := range items {
		n, err := l.add(parent, item.Title)
		if err != nil {
			return res, err
		}
		res.Results = append(res.Results, &Result{list: l, node: n})
	}

	thunks := make([]executor.Thunk[struct{}], len(items))
	for i, item := range items {
		item := item
		n := res.Results[i].node
		thunks[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, l.run(ctx, n, item.Run)
		}
	}

	_, err := executor.Map(ctx, thunks, executor.MapOptions{
		Concurrency: opts.Concurrency,
		StopOnError: opts.StopOnError,
	})
	return res, err
}

func errorFromOutput(n *task.Node) error {
	if out := n.Output(); out != "" {
		return errors.New(out)
	}
	return errors.New("task failed")
}

func defaultOutput(stderr bool) io.Writer {
	if stderr {
		return os.Stderr
	}
	return os.Stdout
}
