package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/executor"
	"github.com/pablasso/tasktree/internal/logger"
	"github.com/pablasso/tasktree/internal/tasklist"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command>...",
		Short: "Run shell commands as tasks",
		Long: `Run each argument as a shell command and show it as a task.

  tasktree exec -j 0 -- "go vet ./..." "go test ./..."`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExec,
	}
	addRunFlags(cmd.Flags())
	cmd.Flags().String("title", "", "Group the commands under a parent task with this title")
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	capture, err := executor.NewOutputCapture(a.cfg.Run.OutputLog, nil)
	if err != nil {
		return err
	}
	defer capture.Close()

	ctx, stop := hooks.NotifyContext(cmd.Context())
	defer stop()
	ctx = logger.ContextWithLogger(ctx, a.log)

	run := a.cfg.Run
	items := make([]tasklist.Item, len(args))
	for i, command := range args {
		command := command
		items[i] = tasklist.Item{
			Title: command,
			Run: func(ctx context.Context, t *tasklist.Task) error {
				return runCommand(ctx, t, executor.NewCommandRunner(), capture, command, run.PreviewLines)
			},
		}
	}
	opts := tasklist.GroupOptions{Concurrency: run.Concurrency, StopOnError: run.StopOnError}

	list := a.newList(nil)
	title, _ := cmd.Flags().GetString("title")
	if title != "" {
		_, err = list.Run(ctx, title, func(ctx context.Context, t *tasklist.Task) error {
			_, err := t.Group(ctx, items, opts)
			return err
		})
	} else {
		_, err = list.Group(ctx, items, opts)
	}
	list.Close()

	counts := summarize(list.Tree().Snapshot(false))
	a.log.Info("exec finished", zap.Int("total", counts.total), zap.Int("succeeded", counts.succeeded), zap.Error(err))
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("cancelled after %s: %w", pluralize(counts.succeeded, "task"), context.Cause(ctx))
	default:
		return fmt.Errorf("%d of %s failed: %w", counts.failed, pluralize(counts.total, "task"), err)
	}
}
