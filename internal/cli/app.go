package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/config"
	"github.com/pablasso/tasktree/internal/display"
	"github.com/pablasso/tasktree/internal/exithook"
	"github.com/pablasso/tasktree/internal/logger"
	"github.com/pablasso/tasktree/internal/task"
	"github.com/pablasso/tasktree/internal/tasklist"
)

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default: ~/.config/tasktree/config.yaml and .tasktree.yaml)")
	fs.String("log-file", "", "Write a JSON debug log to this file")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	fs.BoolP("verbose", "v", false, "Log at debug level")
	fs.Int("max-lines", 0, "Maximum rows of the live tree (0: terminal height)")
	fs.Bool("elapsed", false, "Show elapsed time next to tasks")
	fs.Bool("capture-stdio", true, "Print stray stdout/stderr writes above the tree")
	fs.String("mode", "auto", "Render mode: auto, interactive, append")
	fs.String("color", "auto", "Colors: auto, always, never")
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.IntP("concurrency", "j", 1, "Tasks run at once per group (0: unbounded)")
	fs.Bool("stop-on-error", false, "Stop starting tasks after the first failure")
	fs.Int("preview-lines", 5, "Output lines previewed under a running command (0: none)")
	fs.String("output-log", "", "Append full command output to this file")
}

// hooks owns interrupt handling for the commands.
var hooks = exithook.Default()

// app is the configuration shared by every command.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	mode   display.Mode
	colors display.ColorMode
	out    io.Writer
	errOut io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")

	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: flags})
	if err != nil {
		return nil, err
	}

	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	log, err := logger.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	modeName, _ := flags.GetString("mode")
	mode, err := display.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	colorName, _ := flags.GetString("color")
	colors, err := display.ParseColorMode(colorName)
	if err != nil {
		return nil, err
	}

	log.Debug("configuration loaded",
		zap.String("config_file", configFile),
		zap.Int("concurrency", cfg.Run.Concurrency),
		zap.Bool("stop_on_error", cfg.Run.StopOnError),
		zap.Int("max_visible_lines", cfg.Display.MaxVisibleLines),
	)

	return &app{cfg: cfg, log: log, mode: mode, colors: colors, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}, nil
}

func (a *app) newList(events tasklist.Events) *tasklist.List {
	opts := a.cfg.DisplayOptions(a.log)
	opts.Mode = a.mode
	opts.Colors = a.colors
	return tasklist.New(tasklist.Options{Output: a.out, ErrOutput: a.errOut, Display: opts, Events: events})
}

func (a *app) close() {
	_ = a.log.Sync()
}

// tally counts the tasks of a finished tree.
type tally struct {
	total     int
	succeeded int
	failed    int
}

func summarize(nodes []task.Snapshot) tally {
	var t tally
	for _, n := range nodes {
		c := summarize(n.Children)
		t.total += 1 + c.total
		t.succeeded += c.succeeded
		t.failed += c.failed
		switch n.State {
		case task.StateSuccess, task.StateWarning:
			t.succeeded++
		case task.StateError:
			t.failed++
		}
	}
	return t
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
