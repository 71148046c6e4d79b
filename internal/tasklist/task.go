package tasklist

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/logger"
	"github.com/pablasso/tasktree/internal/task"
)

// Func is the body of a task.
type Func func(ctx context.Context, t *Task) error

// Task is the handle passed to a running task function.
type Task struct {
	list *List
	node *task.Node
}

// ID returns the node id.
func (t *Task) ID() string { return t.node.ID() }

// Title returns the current title.
func (t *Task) Title() string { return t.node.Title() }

func (t *Task) SetTitle(title string)   { t.node.SetTitle(title) }
func (t *Task) SetStatus(status string) { t.node.SetStatus(status) }
func (t *Task) SetOutput(output string) { t.node.SetOutput(output) }

// SetWarning marks the task with a warning. The task keeps the warning
// when its function returns successfully.
func (t *Task) SetWarning(msg string) { t.node.SetWarning(msg) }

// SetError marks the task failed without returning from its function.
func (t *Task) SetError(err error) { t.node.SetError(err) }

// StartTime starts the task's stopwatch.
func (t *Task) StartTime() { t.node.StartTime() }

// StopTime freezes the stopwatch and returns the measured duration.
func (t *Task) StopTime() time.Duration { return t.node.StopTime() }

// Stream returns a writer whose last lines are previewed under the task.
func (t *Task) Stream(lines int) io.WriteCloser { return t.node.Stream(lines) }

// Stdout returns a writer that prints above the task tree.
func (t *Task) Stdout() io.Writer { return t.list.Stdout() }

// Stderr is Stdout for diagnostics.
func (t *Task) Stderr() io.Writer { return t.list.Stderr() }

// Run registers a subtask and runs fn.
func (t *Task) Run(ctx context.Context, title string, fn Func) (*Result, error) {
	n, err := t.list.add(t.node, title)
	if err != nil {
		return nil, err
	}
	res := &Result{list: t.list, node: n}
	return res, t.list.run(ctx, n, fn)
}

// Group registers every item as a pending subtask, then runs them.
func (t *Task) Group(ctx context.Context, items []Item, opts GroupOptions) (*GroupResult, error) {
	return t.list.group(ctx, t.node, items, opts)
}

// run drives a registered node through its lifecycle.
func (l *List) run(ctx context.Context, n *task.Node, fn Func) error {
	ctx = logger.With(ctx, zap.String("task_id", n.ID()))
	log := logger.FromContext(ctx)

	n.Start()
	log.Debug("task started", zap.String("title", n.Title()))
	if l.events != nil {
		l.events.OnTaskStart(n.ID(), n.Title())
	}

	start := time.Now()
	err := fn(ctx, &Task{list: l, node: n})
	n.Finish(err)

	if err != nil {
		log.Debug("task failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		if l.events != nil {
			l.events.OnTaskFailed(n.ID(), n.Title(), err)
		}
		return err
	}

	state := n.State()
	log.Debug("task finished", zap.Stringer("state", state), zap.Duration("elapsed", time.Since(start)))
	if l.events != nil {
		if state == task.StateError {
			l.events.OnTaskFailed(n.ID(), n.Title(), errorFromOutput(n))
		} else {
			l.events.OnTaskComplete(n.ID(), n.Title(), state)
		}
	}
	return nil
}
