// Package config loads tasktree settings from defaults, config files,
// TASKTREE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/display"
)

const (
	envPrefix         = "TASKTREE"
	projectConfigName = ".tasktree.yaml"
)

// Config holds all configuration for tasktree.
type Config struct {
	Display DisplayConfig `mapstructure:"display"`
	CI      CIConfig      `mapstructure:"ci"`
	Log     LogConfig     `mapstructure:"log"`
	Run     RunConfig     `mapstructure:"run"`
}

// DisplayConfig holds renderer settings.
type DisplayConfig struct {
	// MaxVisibleLines caps the live tree height. Zero derives it from the terminal.
	MaxVisibleLines int           `mapstructure:"max_visible_lines"`
	ShowElapsed     bool          `mapstructure:"show_elapsed"`
	FrameInterval   time.Duration `mapstructure:"frame_interval"`
	SpinnerInterval time.Duration `mapstructure:"spinner_interval"`
	CaptureStdio    bool          `mapstructure:"capture_stdio"`
}

// CIConfig lists the variables that switch the renderer to append mode.
type CIConfig struct {
	Env []string `mapstructure:"env"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// RunConfig holds defaults for task files and ad-hoc commands.
type RunConfig struct {
	Concurrency  int    `mapstructure:"concurrency"`
	StopOnError  bool   `mapstructure:"stop_on_error"`
	PreviewLines int    `mapstructure:"preview_lines"`
	OutputLog    string `mapstructure:"output_log"`
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"max-lines":     "display.max_visible_lines",
	"elapsed":       "display.show_elapsed",
	"capture-stdio": "display.capture_stdio",
	"log-file":      "log.file",
	"log-level":     "log.level",
	"concurrency":   "run.concurrency",
	"stop-on-error": "run.stop_on_error",
	"preview-lines": "run.preview_lines",
	"output-log":    "run.output_log",
}

// Options locates the configuration sources.
type Options struct {
	// ConfigFile replaces the user and project config files when set.
	ConfigFile string
	// UserDir holds config.yaml. Defaults to the XDG config directory.
	UserDir string
	// WorkDir is where the search for .tasktree.yaml starts. Defaults to the
	// current directory.
	WorkDir string
	// Flags are bound on top of every other source.
	Flags *pflag.FlagSet
}

// Load reads the configuration.
// Precedence (highest to lowest):
// 1. Flags that were set on the command line
// 2. Environment variables (TASKTREE_DISPLAY_SHOW_ELAPSED, ...)
// 3. Project config (.tasktree.yaml in the working directory or a parent)
// 4. User config (~/.config/tasktree/config.yaml)
// 5. Built-in defaults
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
	} else {
		if err := readUserConfig(v, opts.UserDir); err != nil {
			return nil, err
		}
		if err := mergeProjectConfig(v, opts.WorkDir); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readUserConfig(v *viper.Viper, dir string) error {
	if dir == "" {
		dir = UserConfigDir()
	}
	v.SetConfigName("config")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading user config: %w", err)
		}
	}
	return nil
}

func mergeProjectConfig(v *viper.Viper, dir string) error {
	path := FindProjectConfig(dir)
	if path == "" {
		return nil
	}
	project := viper.New()
	project.SetConfigFile(path)
	if err := project.ReadInConfig(); err != nil {
		return fmt.Errorf("reading project config %s: %w", path, err)
	}
	if err := v.MergeConfigMap(project.AllSettings()); err != nil {
		return fmt.Errorf("merging project config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("display.max_visible_lines", 0)
	v.SetDefault("display.show_elapsed", false)
	v.SetDefault("display.frame_interval", "33ms")
	v.SetDefault("display.spinner_interval", "80ms")
	v.SetDefault("display.capture_stdio", true)

	v.SetDefault("ci.env", display.DefaultCIEnv)

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetDefault("run.concurrency", 1)
	v.SetDefault("run.stop_on_error", false)
	v.SetDefault("run.preview_lines", 5)
	v.SetDefault("run.output_log", "")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			FrameInterval:   33 * time.Millisecond,
			SpinnerInterval: 80 * time.Millisecond,
			CaptureStdio:    true,
		},
		CI:  CIConfig{Env: append([]string(nil), display.DefaultCIEnv...)},
		Log: LogConfig{Level: "info"},
		Run: RunConfig{Concurrency: 1, PreviewLines: 5},
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch {
	case c.Display.MaxVisibleLines < 0:
		return fmt.Errorf("display.max_visible_lines must not be negative, got %d", c.Display.MaxVisibleLines)
	case c.Display.FrameInterval < 0:
		return fmt.Errorf("display.frame_interval must not be negative, got %s", c.Display.FrameInterval)
	case c.Display.SpinnerInterval < 0:
		return fmt.Errorf("display.spinner_interval must not be negative, got %s", c.Display.SpinnerInterval)
	case c.Run.Concurrency < 0:
		return fmt.Errorf("run.concurrency must not be negative, got %d", c.Run.Concurrency)
	case c.Run.PreviewLines < 0:
		return fmt.Errorf("run.preview_lines must not be negative, got %d", c.Run.PreviewLines)
	}
	return nil
}

// DisplayOptions converts the configuration into renderer options.
func (c *Config) DisplayOptions(log *zap.Logger) display.Options {
	return display.Options{
		MaxVisibleLines: display.Limit{Fixed: c.Display.MaxVisibleLines},
		ShowElapsed:     c.Display.ShowElapsed,
		FrameInterval:   c.Display.FrameInterval,
		SpinnerInterval: c.Display.SpinnerInterval,
		CaptureStdio:    c.Display.CaptureStdio,
		CIEnv:           c.CI.Env,
		Logger:          log,
	}
}

// UserConfigDir returns the XDG config directory for tasktree.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tasktree")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "tasktree")
	}
	return filepath.Join(home, ".config", "tasktree")
}

// FindProjectConfig searches for .tasktree.yaml in dir and its parents.
// An empty dir starts at the current directory.
func FindProjectConfig(dir string) string {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		path := filepath.Join(dir, projectConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
