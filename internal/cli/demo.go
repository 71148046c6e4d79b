package cli

import (
	"github.com/spf13/cobra"

	"github.com/pablasso/tasktree/internal/demo"
	"github.com/pablasso/tasktree/internal/logger"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Play a simulated pipeline",
		Long: `Play a scripted release pipeline through the task tree without running
any commands. Useful for trying render modes and terminal sizes.

Scenarios:
  success  Every step passes (default)
  flaky    Two steps fail once and pass on retry with a warning
  fail     One step fails and stops the pipeline

Presets:
  quick    about 5 seconds
  medium   about 15 seconds (default)
  slow     about 45 seconds`,
		Args: cobra.NoArgs,
		RunE: runDemo,
	}
	cmd.Flags().String("scenario", string(demo.ScenarioSuccess), "Demo scenario: success, flaky, fail")
	cmd.Flags().String("preset", string(demo.PresetMedium), "Demo pacing: quick, medium, slow")
	return cmd
}

func runDemo(cmd *cobra.Command, args []string) error {
	scenarioName, _ := cmd.Flags().GetString("scenario")
	scenario, err := demo.ParseScenario(scenarioName)
	if err != nil {
		return err
	}
	presetName, _ := cmd.Flags().GetString("preset")
	preset, err := demo.ParsePreset(presetName)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	playback, err := demo.NewPlayback(scenario, preset)
	if err != nil {
		return err
	}

	ctx, stop := hooks.NotifyContext(cmd.Context())
	defer stop()
	ctx = logger.ContextWithLogger(ctx, a.log)

	list := a.newList(nil)
	defer list.Close()
	return playback.Run(ctx, list)
}
