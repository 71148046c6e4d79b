package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pablasso/tasktree/internal/cli"
	"github.com/pablasso/tasktree/internal/exithook"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exithook.Exit(exitCode(err))
	}
	exithook.Exit(0)
}

// exitCode follows the shell convention of 128+n for a signal.
func exitCode(err error) int {
	var sigErr *exithook.SignalError
	if errors.As(err, &sigErr) {
		return sigErr.ExitCode()
	}
	return 1
}
