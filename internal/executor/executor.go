// Package executor runs groups of work with bounded concurrency.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrAborted is returned when the context ends before every thunk started.
// The returned error also wraps context.Cause.
var ErrAborted = errors.New("aborted")

// Thunk is a deferred unit of work.
type Thunk[T any] func(ctx context.Context) (T, error)

// MapOptions controls how Map schedules thunks.
type MapOptions struct {
	// Concurrency caps the number of thunks in flight. Zero or less is unbounded.
	Concurrency int

	// StopOnError returns the first failure immediately. Thunks already
	// running keep running; no new thunk starts. Without it every thunk runs
	// and the failures are combined.
	StopOnError bool
}

// Map runs thunks and returns their results in input order.
func Map[T any](ctx context.Context, thunks []Thunk[T], opts MapOptions) ([]T, error) {
	results := make([]T, len(thunks))
	errs := make([]error, len(thunks))

	var (
		mu      sync.Mutex
		stopped bool
		skipped int
	)
	halted := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return stopped || ctx.Err() != nil
	}

	failed := make(chan error, 1)
	done := make(chan struct{})

	g := new(errgroup.Group)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	go func() {
		defer close(done)
		for i, thunk := range thunks {
			i, thunk := i, thunk
			if halted() {
				mu.Lock()
				skipped += len(thunks) - i
				mu.Unlock()
				break
			}
			g.Go(func() error {
				// The slot may have opened after a failure or cancellation.
				if halted() {
					mu.Lock()
					skipped++
					mu.Unlock()
					return nil
				}
				v, err := thunk(ctx)
				if err != nil {
					errs[i] = err
					if opts.StopOnError {
						mu.Lock()
						first := !stopped
						stopped = true
						mu.Unlock()
						if first {
							failed <- err
						}
					}
					return nil
				}
				results[i] = v
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case err := <-failed:
		return nil, err
	case <-ctx.Done():
		select {
		case <-done:
		default:
			return nil, aborted(ctx)
		}
	case <-done:
	}

	select {
	case err := <-failed:
		return nil, err
	default:
	}
	if skipped > 0 {
		return nil, multierr.Append(aborted(ctx), multierr.Combine(errs...))
	}
	if err := multierr.Combine(errs...); err != nil {
		return results, err
	}
	return results, nil
}

func aborted(ctx context.Context) error {
	cause := context.Cause(ctx)
	if cause == nil {
		return ErrAborted
	}
	return fmt.Errorf("%w: %w", ErrAborted, cause)
}
