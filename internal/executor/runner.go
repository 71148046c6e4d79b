package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

// CommandRunner runs shell commands.
type CommandRunner struct {
	// Shell interprets commands with "-c". Defaults to "sh".
	Shell string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// NewCommandRunner creates a CommandRunner using sh.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{Shell: "sh"}
}

// Run executes command and streams its output to output.
func (r *CommandRunner) Run(ctx context.Context, command string, output OutputWriter) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	// Use OutputWriter if provided, otherwise fall back to os.Stdout/os.Stderr
	if output != nil {
		cmd.Stdout = output.Stdout()
		cmd.Stderr = output.Stderr()
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s: exit status %d", command, exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run %q: %w", command, err)
	}

	return nil
}
