// Package exithook runs cleanup functions when the process is interrupted or
// exits through Exit. Hooks are added by a resource when it is acquired and
// removed when it is released, so repeated acquire/release cycles do not leak.
//
// A caller that can shut down on its own registers a context with
// NotifyContext: the first signal then only cancels that context, and a
// second signal runs the hooks and exits.
package exithook

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalError is the cancellation cause of contexts from NotifyContext.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string { return "interrupted by " + e.Signal.String() }

// ExitCode returns the conventional 128+n exit status for the signal.
func (e *SignalError) ExitCode() int { return exitCode(e.Signal) }

func exitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

// Registry holds the hooks of one process.
type Registry struct {
	mu      sync.Mutex
	next    int
	hooks   map[int]func()
	order   []int
	cancels map[int]context.CancelCauseFunc
	// interrupted is set once a signal was turned into a cancellation.
	interrupted bool

	// signal handling, active while at least one hook or context is registered
	sigCh chan os.Signal
	stop  chan struct{}
	exit  func(code int)
}

// NewRegistry creates a registry that calls exit after running its hooks on
// a signal.
func NewRegistry(exit func(code int)) *Registry {
	return &Registry{
		hooks:   make(map[int]func()),
		cancels: make(map[int]context.CancelCauseFunc),
		exit:    exit,
	}
}

var std = NewRegistry(os.Exit)

// Default returns the process-wide registry.
func Default() *Registry { return std }

// Add registers fn on the process-wide registry.
func Add(fn func()) (remove func()) { return std.Add(fn) }

// Run executes the process-wide hooks.
func Run() { std.Run() }

// Exit runs the process-wide hooks, then exits with code.
func Exit(code int) {
	std.Run()
	os.Exit(code)
}

// Len returns the number of hooks registered on the process-wide registry.
func Len() int { return std.Len() }

// Add registers fn and returns a function that removes it again.
func (r *Registry) Add(fn func()) (remove func()) {
	r.mu.Lock()
	id := r.next
	r.next++
	r.hooks[id] = fn
	r.order = append(r.order, id)
	if r.sigCh == nil {
		r.listenLocked()
	}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

// NotifyContext returns a copy of parent that is cancelled with a
// *SignalError on the first signal. stop unregisters it and cancels it.
func (r *Registry) NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	r.mu.Lock()
	id := r.next
	r.next++
	r.cancels[id] = cancel
	if r.sigCh == nil {
		r.listenLocked()
	}
	r.mu.Unlock()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.cancels, id)
			if len(r.cancels) == 0 {
				r.interrupted = false
			}
			r.releaseLocked()
			r.mu.Unlock()
			cancel(context.Canceled)
		})
	}
}

func (r *Registry) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.hooks, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.releaseLocked()
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Run executes every hook once, most recent first, and clears the registry.
func (r *Registry) Run() {
	r.mu.Lock()
	hooks := make([]func(), 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		hooks = append(hooks, r.hooks[r.order[i]])
	}
	r.hooks = make(map[int]func())
	r.order = nil
	r.releaseLocked()
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// handle reacts to one signal and reports whether the process was exited.
func (r *Registry) handle(sig os.Signal) bool {
	r.mu.Lock()
	if len(r.cancels) > 0 && !r.interrupted {
		r.interrupted = true
		cancels := make([]context.CancelCauseFunc, 0, len(r.cancels))
		for _, cancel := range r.cancels {
			cancels = append(cancels, cancel)
		}
		r.mu.Unlock()

		cause := &SignalError{Signal: sig}
		for _, cancel := range cancels {
			cancel(cause)
		}
		return false
	}
	r.mu.Unlock()

	r.Run()
	r.exit(exitCode(sig))
	return true
}

func (r *Registry) listenLocked() {
	r.sigCh = make(chan os.Signal, 1)
	r.stop = make(chan struct{})
	signal.Notify(r.sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func(sigCh chan os.Signal, stop chan struct{}) {
		for {
			select {
			case sig := <-sigCh:
				if r.handle(sig) {
					return
				}
			case <-stop:
				return
			}
		}
	}(r.sigCh, r.stop)
}

// releaseLocked restores default signal behavior once nothing is registered.
func (r *Registry) releaseLocked() {
	if len(r.order) > 0 || len(r.cancels) > 0 || r.sigCh == nil {
		return
	}
	signal.Stop(r.sigCh)
	close(r.stop)
	r.sigCh = nil
	r.stop = nil
}
