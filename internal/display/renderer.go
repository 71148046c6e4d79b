// Package display renders the task tree to a terminal.
//
// In interactive mode the renderer redraws the tree in place: it erases the
// rows it drew last time and writes a new frame, at most once per frame
// interval. Output written through its console sinks is printed above the
// tree. In append mode (CI, pipes) it writes the finished tree once.
package display

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/exithook"
	"github.com/pablasso/tasktree/internal/task"
)

// Mode selects how frames are written.
type Mode int

const (
	// ModeAuto is interactive on a terminal outside CI, append otherwise.
	ModeAuto Mode = iota
	ModeInteractive
	ModeAppend
)

// ColorMode selects whether frames carry color codes.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

const defaultFrameInterval = 33 * time.Millisecond

// Options configures a Renderer.
type Options struct {
	// Output receives frames. Defaults to os.Stdout.
	Output io.Writer
	// ErrOutput receives the stderr sink's text whenever it is not printed
	// above a live frame. Defaults to os.Stderr.
	ErrOutput io.Writer

	MaxVisibleLines Limit
	ShowElapsed     bool
	FrameInterval   time.Duration
	SpinnerInterval time.Duration

	// CIEnv lists the variables that select append mode. Defaults to DefaultCIEnv.
	CIEnv []string

	// CaptureStdio redirects os.Stdout and os.Stderr into the console sinks
	// while the renderer is interactive.
	CaptureStdio bool

	Mode   Mode
	Colors ColorMode

	// Getenv and Size replace environment and terminal lookups.
	Getenv func(string) string
	Size   func() (columns, rows int)

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.ErrOutput == nil {
		o.ErrOutput = os.Stderr
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = defaultFrameInterval
	}
	if o.SpinnerInterval <= 0 {
		o.SpinnerInterval = spinner.MiniDot.FPS
	}
	if o.CIEnv == nil {
		o.CIEnv = DefaultCIEnv
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.Size == nil {
		out := o.Output
		o.Size = func() (int, int) { return terminalSize(out) }
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Renderer draws a task tree. It registers itself as the tree's observer.
type Renderer struct {
	tree        *task.Tree
	out         io.Writer
	opts        Options
	log         *zap.Logger
	framer      *Framer
	interactive bool

	stdout *consoleWriter
	stderr *consoleWriter

	mu            sync.Mutex
	lastFrame     string
	lastRows      int
	placeholder   bool
	cursorHidden  bool
	renderPending bool
	renderTimer   *time.Timer
	spinnerStop   chan struct{}
	spinnerFrame  int
	released      bool
	closed        bool

	removeHook   func()
	restoreStdio func()
	stopResize   func()
}

// New creates a renderer for tree and starts observing it.
func New(tree *task.Tree, opts Options) *Renderer {
	opts = opts.withDefaults()

	tty := isTerminal(opts.Output)
	interactive := opts.Mode == ModeInteractive ||
		(opts.Mode == ModeAuto && tty && !IsCI(opts.Getenv, opts.CIEnv))

	var useColors bool
	switch opts.Colors {
	case ColorAlways:
		useColors = true
	case ColorNever:
		useColors = false
	default:
		useColors = decideColors(opts.Getenv, termenvQuery(opts.Output), tty)
	}

	r := &Renderer{
		tree:        tree,
		out:         opts.Output,
		opts:        opts,
		log:         opts.Logger,
		framer:      NewFramer(useColors),
		interactive: interactive,
	}
	r.stdout = &consoleWriter{r: r, pass: opts.Output}
	r.stderr = &consoleWriter{r: r, pass: opts.ErrOutput}

	r.log.Debug("renderer created",
		zap.Bool("interactive", interactive),
		zap.Bool("colors", useColors))

	if interactive {
		r.removeHook = exithook.Add(r.Close)
		r.stopResize = watchResize(r.RequestRender)
		if opts.CaptureStdio {
			restore, err := Redirect(r.stdout, r.stderr)
			if err != nil {
				r.log.Debug("stdio capture unavailable", zap.Error(err))
			} else {
				r.restoreStdio = restore
			}
		}
	}

	tree.SetObserver(r)
	r.RequestRender()
	return r
}

// Interactive reports whether frames are redrawn in place.
func (r *Renderer) Interactive() bool { return r.interactive }

// Stdout returns the console sink for regular output.
func (r *Renderer) Stdout() io.Writer { return r.stdout }

// Stderr returns the console sink for diagnostics.
func (r *Renderer) Stderr() io.Writer { return r.stderr }

// RequestRender schedules a redraw. Requests arriving while one is pending
// are coalesced.
func (r *Renderer) RequestRender() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduleLocked()
}

func (r *Renderer) scheduleLocked() {
	if r.released {
		return
	}
	r.updateSpinnerLocked()
	if r.renderPending {
		return
	}
	r.renderPending = true
	r.renderTimer = time.AfterFunc(r.opts.FrameInterval, r.flushScheduled)
}

func (r *Renderer) flushScheduled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderPending = false
	if r.released {
		return
	}
	r.renderLocked(false)
}

// updateSpinnerLocked runs the spinner while any node is active.
func (r *Renderer) updateSpinnerLocked() {
	if !r.interactive {
		return
	}
	done := r.tree.Done()
	switch {
	case !done && r.spinnerStop == nil:
		r.spinnerStop = make(chan struct{})
		go r.spin(r.spinnerStop)
	case done && r.spinnerStop != nil:
		r.stopSpinnerLocked()
	}
}

func (r *Renderer) stopSpinnerLocked() {
	if r.spinnerStop != nil {
		close(r.spinnerStop)
		r.spinnerStop = nil
	}
}

func (r *Renderer) spin(stop chan struct{}) {
	ticker := time.NewTicker(r.opts.SpinnerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			r.spinnerFrame++
			r.scheduleLocked()
			r.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// renderLocked draws the current tree. A final render lifts the row limit.
func (r *Renderer) renderLocked(final bool) {
	snaps := r.tree.Snapshot(r.opts.ShowElapsed)
	columns, rows := r.opts.Size()

	if !r.interactive {
		// Append mode writes the finished tree once.
		if !final && !task.Done(snaps) {
			return
		}
		frame := r.frame(snaps, 0, columns)
		if frame == "" || frame == r.lastFrame {
			return
		}
		r.write(frame)
		r.lastFrame = frame
		return
	}

	limit := 0
	if !final {
		limit = r.opts.MaxVisibleLines.Resolve(rows)
	}
	frame := r.frame(snaps, limit, columns)

	// Only redraw if changed (reduces flicker and keeps final frames unique).
	if frame == r.lastFrame && !r.placeholder {
		return
	}

	var buf []byte
	if !r.cursorHidden {
		buf = append(buf, cursorHide...)
		r.cursorHidden = true
	}
	if r.lastRows > 0 {
		buf = append(buf, eraseRows(r.lastRows)...)
	}
	buf = append(buf, frame...)
	r.write(string(buf))

	r.lastFrame = frame
	r.lastRows = VisualLineCount(frame, columns)
	r.placeholder = false
}

func (r *Renderer) frame(snaps []task.Snapshot, limit, columns int) string {
	measure := func(n task.Snapshot, depth int) int {
		return r.framer.nodeRows(n, depth, columns)
	}
	return r.framer.Render(Select(snaps, limit, measure), r.spinnerFrame)
}

// writeConsole prints foreign output above the task list. Without a live
// frame the text goes to pass unmodified.
func (r *Renderer) writeConsole(text string, pass io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.interactive {
		r.writeTo(pass, text)
		return
	}

	wasPlaceholder := r.placeholder
	if r.lastRows > 0 {
		r.write(eraseRows(r.lastRows))
	}
	r.write(text)
	r.lastFrame = ""
	r.lastRows = 0
	r.placeholder = false

	snaps := r.tree.Snapshot(r.opts.ShowElapsed)
	switch {
	case len(snaps) == 0:
		return
	case task.Done(snaps) && !wasPlaceholder:
		r.renderLocked(false)
	default:
		// Reserve a row until the next scheduled frame.
		r.write("\n")
		r.lastRows = 1
		r.placeholder = true
		r.scheduleLocked()
	}
}

// write is best effort: a failing terminal must not crash the run.
func (r *Renderer) write(s string) { r.writeTo(r.out, s) }

func (r *Renderer) writeTo(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		r.log.Debug("write failed", zap.Error(err))
	}
}

// Close writes the final, unlimited frame and releases the terminal: timers
// stop, captured stdio is restored and the cursor is shown again. The tree
// stays on screen. Close is idempotent.
func (r *Renderer) Close() {
	if !r.release() {
		return
	}

	r.mu.Lock()
	r.renderLocked(true)
	r.finishLocked()
	r.mu.Unlock()

	r.detach()
	r.log.Debug("renderer closed")
}

// Teardown erases the drawn tree and releases the terminal. It is used when
// the last task was cleared.
func (r *Renderer) Teardown() {
	if !r.release() {
		return
	}

	r.mu.Lock()
	if r.interactive && r.lastRows > 0 {
		r.write(eraseRows(r.lastRows) + eraseDown)
		r.lastRows = 0
		r.lastFrame = ""
	}
	r.finishLocked()
	r.mu.Unlock()

	r.detach()
	r.log.Debug("renderer torn down")
}

// release stops background work and drains the console sinks. It returns
// false when the renderer was already released.
func (r *Renderer) release() bool {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return false
	}
	r.released = true
	r.stopSpinnerLocked()
	if r.renderTimer != nil {
		r.renderTimer.Stop()
	}
	r.renderPending = false
	restore := r.restoreStdio
	r.restoreStdio = nil
	r.mu.Unlock()

	if restore != nil {
		restore()
	}
	r.stdout.Flush()
	r.stderr.Flush()
	return true
}

func (r *Renderer) finishLocked() {
	if r.cursorHidden {
		r.write(cursorShow)
		r.cursorHidden = false
	}
	r.closed = true
}

func (r *Renderer) detach() {
	r.tree.SetObserver(nil)
	if r.stopResize != nil {
		r.stopResize()
	}
	if r.removeHook != nil {
		r.removeHook()
	}
}
