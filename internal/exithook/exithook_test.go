package exithook

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RunsMostRecentFirst(t *testing.T) {
	r := NewRegistry(func(int) {})
	var calls []string

	r.Add(func() { calls = append(calls, "first") })
	r.Add(func() { calls = append(calls, "second") })
	r.Run()

	assert.Equal(t, []string{"second", "first"}, calls)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemovedHookDoesNotRun(t *testing.T) {
	r := NewRegistry(func(int) {})
	ran := false

	remove := r.Add(func() { ran = true })
	remove()
	remove() // idempotent
	r.Run()

	assert.False(t, ran)
}

func TestRegistry_RepeatedCyclesDoNotLeak(t *testing.T) {
	r := NewRegistry(func(int) {})

	for i := 0; i < 10; i++ {
		remove := r.Add(func() {})
		assert.Equal(t, 1, r.Len())
		remove()
	}

	assert.Equal(t, 0, r.Len())
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Nil(t, r.sigCh, "signal handler should be released with the last hook")
}

func TestRegistry_RunTwiceIsHarmless(t *testing.T) {
	r := NewRegistry(func(int) {})
	count := 0
	r.Add(func() { count++ })

	r.Run()
	r.Run()

	assert.Equal(t, 1, count)
}

func TestRegistry_FirstSignalCancelsContext(t *testing.T) {
	var exits []int
	r := NewRegistry(func(code int) { exits = append(exits, code) })
	ran := false
	r.Add(func() { ran = true })

	ctx, stop := r.NotifyContext(context.Background())
	defer stop()

	assert.False(t, r.handle(os.Interrupt))
	require.Error(t, ctx.Err())

	var sigErr *SignalError
	require.True(t, errors.As(context.Cause(ctx), &sigErr))
	assert.Equal(t, os.Interrupt, sigErr.Signal)
	assert.Equal(t, 130, sigErr.ExitCode())
	assert.False(t, ran, "hooks wait for the cancelled caller")
	assert.Empty(t, exits)

	// A second signal forces the exit.
	assert.True(t, r.handle(syscall.SIGTERM))
	assert.True(t, ran)
	assert.Equal(t, []int{143}, exits)
}

func TestRegistry_SignalWithoutContextExits(t *testing.T) {
	var exits []int
	r := NewRegistry(func(code int) { exits = append(exits, code) })
	ran := false
	r.Add(func() { ran = true })

	assert.True(t, r.handle(os.Interrupt))

	assert.True(t, ran)
	assert.Equal(t, []int{130}, exits)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_StopReleasesContext(t *testing.T) {
	r := NewRegistry(func(int) {})

	ctx, stop := r.NotifyContext(context.Background())
	r.mu.Lock()
	assert.NotNil(t, r.sigCh)
	r.mu.Unlock()

	stop()
	stop()

	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Nil(t, r.sigCh, "signal handler should be released with the last context")
	assert.Empty(t, r.cancels)
}

func TestRegistry_NewContextAfterStopCancelsAgain(t *testing.T) {
	var exits []int
	r := NewRegistry(func(code int) { exits = append(exits, code) })

	_, stop := r.NotifyContext(context.Background())
	r.handle(os.Interrupt)
	stop()

	ctx, stop := r.NotifyContext(context.Background())
	defer stop()
	assert.False(t, r.handle(os.Interrupt))
	assert.Error(t, ctx.Err())
	assert.Empty(t, exits)
}

func TestSignalError(t *testing.T) {
	err := &SignalError{Signal: syscall.SIGHUP}
	assert.Equal(t, "interrupted by hangup", err.Error())
	assert.Equal(t, 129, err.ExitCode())
}
