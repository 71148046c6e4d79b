// Package tasklist runs functions as tasks of a live task tree.
//
// A List owns one task tree. The first registered task creates the
// renderer; clearing the last root task tears it down again, so a List can
// go through several render cycles. Close writes the final frame.
package tasklist

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/display"
	"github.com/pablasso/tasktree/internal/task"
)

// ErrClosed is returned when registering tasks on a closed List.
var ErrClosed = errors.New("task list is closed")

// Events receives task lifecycle transitions.
type Events interface {
	OnTaskStart(id, title string)
	OnTaskComplete(id, title string, state task.State)
	OnTaskFailed(id, title string, err error)
}

// Options configures a List.
type Options struct {
	// Output and ErrOutput override Display.Output and Display.ErrOutput
	// when set.
	Output    io.Writer
	ErrOutput io.Writer
	Display   display.Options
	Events    Events
}

// List is a set of tasks rendered as one tree.
type List struct {
	tree   *task.Tree
	opts   Options
	events Events
	log    *zap.Logger

	mu       sync.Mutex
	renderer *display.Renderer
	closed   bool
}

// New creates an empty List. Nothing is drawn until a task is registered.
func New(opts Options) *List {
	if opts.Output != nil {
		opts.Display.Output = opts.Output
	}
	if opts.ErrOutput != nil {
		opts.Display.ErrOutput = opts.ErrOutput
	}
	log := opts.Display.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &List{
		tree:   task.NewTree(),
		opts:   opts,
		events: opts.Events,
		log:    log,
	}
}

// Tree exposes the underlying task tree.
func (l *List) Tree() *task.Tree { return l.tree }

// Interactive reports whether the current renderer redraws in place.
// It is false while no renderer is attached.
func (l *List) Interactive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.renderer != nil && l.renderer.Interactive()
}

// Run registers a root task and runs fn. The error returned by fn marks the
// task failed and is returned unchanged.
func (l *List) Run(ctx context.Context, title string, fn Func) (*Result, error) {
	n, err := l.add(nil, title)
	if err != nil {
		return nil, err
	}
	res := &Result{list: l, node: n}
	return res, l.run(ctx, n, fn)
}

// Group registers every item as a pending root task, then runs them.
func (l *List) Group(ctx context.Context, items []Item, opts GroupOptions) (*GroupResult, error) {
	return l.group(ctx, nil, items, opts)
}

// Stdout returns a writer that prints above the task tree.
func (l *List) Stdout() io.Writer { return console{list: l} }

// Stderr is Stdout for diagnostics.
func (l *List) Stderr() io.Writer { return console{list: l, stderr: true} }

// Close renders the full tree a final time and releases the terminal.
// It is safe to call more than once.
func (l *List) Close() {
	l.mu.Lock()
	r := l.renderer
	l.renderer = nil
	l.closed = true
	l.mu.Unlock()

	if r != nil {
		r.Close()
	}
}

// add registers a node and attaches a renderer when this is the first root.
func (l *List) add(parent *task.Node, title string) (*task.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if l.renderer == nil {
		l.renderer = display.New(l.tree, l.opts.Display)
		l.log.Debug("renderer attached", zap.Bool("interactive", l.renderer.Interactive()))
	}
	return l.tree.Add(parent, title), nil
}

// remove detaches nodes and tears the renderer down once no root is left.
func (l *List) remove(nodes ...*task.Node) {
	l.mu.Lock()
	for _, n := range nodes {
		l.tree.Remove(n)
	}
	var r *display.Renderer
	if l.tree.Len() == 0 && l.renderer != nil {
		r = l.renderer
		l.renderer = nil
	}
	l.mu.Unlock()

	if r != nil {
		r.Teardown()
		l.log.Debug("renderer detached")
	}
}

func (l *List) current() *display.Renderer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.renderer
}

// console routes writes through whichever renderer is attached at write time.
type console struct {
	list   *List
	stderr bool
}

func (c console) Write(p []byte) (int, error) {
	if r := c.list.current(); r != nil {
		if c.stderr {
			return r.Stderr().Write(p)
		}
		return r.Stdout().Write(p)
	}
	out := c.list.opts.Display.Output
	if c.stderr {
		out = c.list.opts.Display.ErrOutput
	}
	if out == nil {
		out = defaultOutput(c.stderr)
	}
	return out.Write(p)
}
