package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/config"
	"github.com/pablasso/tasktree/internal/executor"
	"github.com/pablasso/tasktree/internal/logger"
	"github.com/pablasso/tasktree/internal/plan"
	"github.com/pablasso/tasktree/internal/tasklist"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.yaml>",
		Short: "Run a task file",
		Long: `Run the tasks of a YAML task file as a live task tree.

Each run appends to .tasktree/<name>/progress.log next to the task file, and
only one run of a task file can be active at a time.`,
		Args: cobra.ExactArgs(1),
		RunE: runTaskFile,
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func runTaskFile(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	p, err := plan.Load(path)
	if err != nil {
		return err
	}

	stateDir, err := plan.CreateStateDir(path)
	if err != nil {
		return err
	}
	lock := plan.NewRunLock(stateDir)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	progress := plan.NewProgressLogger(stateDir, uuid.NewString())
	log := a.log.With(zap.String("task_file", path))

	// The journal gets exactly one end-of-run event, from the main path or
	// from the exit hook of a forced interrupt.
	var endOnce sync.Once
	endRun := func(journal func()) {
		endOnce.Do(func() {
			journal()
			_ = lock.Release()
		})
	}

	// Runs after the renderer's own hook when a second signal forces the exit.
	removeHook := hooks.Add(func() {
		endRun(func() { _ = progress.RunCancelled("interrupted") })
	})
	defer removeHook()

	capture, err := executor.NewOutputCapture(a.cfg.Run.OutputLog, nil)
	if err != nil {
		return err
	}
	defer capture.Close()

	ctx, stop := hooks.NotifyContext(cmd.Context())
	defer stop()
	ctx = logger.ContextWithLogger(ctx, log)

	if err := progress.RunStarted(p.Name, p.SourceFile, p.Count()); err != nil {
		return fmt.Errorf("failed to write progress log: %w", err)
	}
	log.Info("run started", zap.String("name", p.Name), zap.Int("tasks", p.Count()))

	list := a.newList(progress)
	start := time.Now()
	r := &planRunner{
		list:    list,
		capture: capture,
		baseDir: filepath.Dir(path),
		run:     a.cfg.Run,
	}
	runErr := r.runPlan(ctx, p)
	list.Close()

	counts := summarize(list.Tree().Snapshot(false))
	duration := time.Since(start)

	cancelled := runErr != nil && (errors.Is(runErr, executor.ErrAborted) || ctx.Err() != nil)
	switch {
	case runErr == nil:
		endRun(func() { _ = progress.RunCompleted(counts.total, counts.succeeded, duration) })
		log.Info("run completed", zap.Int("total", counts.total), zap.Int("succeeded", counts.succeeded), zap.Duration("duration", duration))
	case cancelled:
		endRun(func() { _ = progress.RunCancelled(runErr.Error()) })
		log.Info("run cancelled", zap.Error(runErr))
	default:
		endRun(func() { _ = progress.RunFailed(runErr, duration) })
		log.Info("run failed", zap.Error(runErr))
	}
	if err := progress.Err(); err != nil {
		log.Warn("progress log incomplete", zap.Error(err))
	}

	switch {
	case runErr == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("run cancelled after %s: %w", pluralize(counts.succeeded, "task"), context.Cause(ctx))
	default:
		return fmt.Errorf("%d of %s failed: %w", counts.failed, pluralize(counts.total, "task"), runErr)
	}
}

// planRunner turns task file entries into tasks of a list.
type planRunner struct {
	list    *tasklist.List
	capture *executor.OutputCapture
	baseDir string
	run     config.RunConfig
}

func (r *planRunner) runPlan(ctx context.Context, p *plan.Plan) error {
	_, err := r.list.Group(ctx, r.items(p.Tasks), tasklist.GroupOptions{
		Concurrency: p.GroupConcurrency(r.run.Concurrency),
		StopOnError: p.GroupStopOnError(r.run.StopOnError),
	})
	return err
}

func (r *planRunner) items(tasks []plan.Task) []tasklist.Item {
	items := make([]tasklist.Item, len(tasks))
	for i := range tasks {
		pt := tasks[i]
		items[i] = tasklist.Item{Title: pt.Title, Run: r.taskFunc(pt)}
	}
	return items
}

func (r *planRunner) taskFunc(pt plan.Task) tasklist.Func {
	return func(ctx context.Context, t *tasklist.Task) error {
		if pt.Run != "" {
			if err := r.command(ctx, t, pt); err != nil {
				return err
			}
		}
		if len(pt.Tasks) == 0 {
			return nil
		}
		_, err := t.Group(ctx, r.items(pt.Tasks), tasklist.GroupOptions{
			Concurrency: pt.GroupConcurrency(r.run.Concurrency),
			StopOnError: pt.GroupStopOnError(r.run.StopOnError),
		})
		return err
	}
}

func (r *planRunner) command(ctx context.Context, t *tasklist.Task, pt plan.Task) error {
	runner := executor.NewCommandRunner()
	runner.Dir = r.baseDir
	if pt.Dir != "" {
		runner.Dir = pt.Dir
		if !filepath.IsAbs(pt.Dir) {
			runner.Dir = filepath.Join(r.baseDir, pt.Dir)
		}
	}
	runner.Env = envList(pt.Env)

	return runCommand(ctx, t, runner, r.capture, pt.Run, pt.PreviewLines(r.run.PreviewLines))
}

// runCommand runs a shell command under t, previewing its output.
func runCommand(ctx context.Context, t *tasklist.Task, runner *executor.CommandRunner, capture *executor.OutputCapture, command string, preview int) error {
	if command != t.Title() {
		t.SetStatus(command)
		defer t.SetStatus("")
	}

	var out executor.OutputWriter = executor.Writers{Out: io.Discard, Err: io.Discard}
	if preview > 0 {
		w := t.Stream(preview)
		defer w.Close()
		out = executor.Writers{Out: w, Err: w}
	}

	capture.WriteTaskHeader(t.Title(), command)
	err := runner.Run(ctx, command, capture.Tee(out))
	capture.WriteTaskFooter(t.Title(), err)
	return err
}

func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + env[k]
	}
	return out
}
