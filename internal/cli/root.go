// Package cli implements the tasktree commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pablasso/tasktree/internal/version"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktree",
		Short: "Run commands as a live task tree",
		Long: `tasktree runs commands and renders their progress as a tree of tasks:
spinners while they run, checkmarks when they finish, and a preview of
their output underneath. Outside a terminal or in CI it prints the
finished tree once instead.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(root.PersistentFlags())
	root.AddCommand(newRunCmd(), newExecCmd(), newDemoCmd())
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
