package main

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pablasso/tasktree/internal/exithook"
)

func TestExitCode(t *testing.T) {
	interrupted := fmt.Errorf("run cancelled after 0 tasks: %w", &exithook.SignalError{Signal: syscall.SIGINT})
	terminated := fmt.Errorf("1 of 2 tasks failed: %w", &exithook.SignalError{Signal: syscall.SIGTERM})

	assert.Equal(t, 130, exitCode(interrupted))
	assert.Equal(t, 143, exitCode(terminated))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}
