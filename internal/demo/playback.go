// Package demo plays back a scripted pipeline through a task list, so the
// renderer can be tried without real commands.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pablasso/tasktree/internal/logger"
	"github.com/pablasso/tasktree/internal/tasklist"
)

// ErrInjectedFailure is returned by steps failed by ScenarioFail.
var ErrInjectedFailure = errors.New("demo injected failure")

const previewLines = 3

// Playback drives a dataset through a task list.
type Playback struct {
	Dataset *Dataset
	Config  Config
	// StopOnError stops a stage at its first failed step.
	StopOnError bool
}

// NewPlayback prepares the embedded dataset for scenario and preset.
func NewPlayback(scenario Scenario, preset Preset) (*Playback, error) {
	base, err := LoadDefaultDataset()
	if err != nil {
		return nil, err
	}
	ds, err := ApplyScenario(base, scenario)
	if err != nil {
		return nil, err
	}
	cfg, err := NewConfig(preset, ds)
	if err != nil {
		return nil, err
	}
	return &Playback{Dataset: ds, Config: cfg, StopOnError: scenario == ScenarioFail}, nil
}

// Run plays the dataset as one root task with a subtask per stage.
func (p *Playback) Run(ctx context.Context, list *tasklist.List) error {
	log := logger.FromContext(ctx)
	log.Info("demo started",
		zap.String("dataset", p.Dataset.Name),
		zap.String("preset", string(p.Config.Preset)),
		zap.Duration("line_delay", p.Config.LineDelay),
		zap.Duration("step_delay", p.Config.StepDelay),
	)

	_, err := list.Run(ctx, p.Dataset.Name, func(ctx context.Context, t *tasklist.Task) error {
		t.StartTime()
		defer t.StopTime()

		items := make([]tasklist.Item, len(p.Dataset.Stages))
		for i, stage := range p.Dataset.Stages {
			items[i] = tasklist.Item{Title: stage.Title, Run: p.stage(stage)}
		}
		_, err := t.Group(ctx, items, tasklist.GroupOptions{Concurrency: 1, StopOnError: true})
		return err
	})
	if err != nil {
		log.Info("demo failed", zap.Error(err))
		return err
	}
	log.Info("demo completed")
	return nil
}

func (p *Playback) stage(stage Stage) tasklist.Func {
	return func(ctx context.Context, t *tasklist.Task) error {
		items := make([]tasklist.Item, len(stage.Steps))
		for i, step := range stage.Steps {
			items[i] = tasklist.Item{Title: step.Title, Run: p.step(step)}
		}
		concurrency := stage.Concurrency
		if concurrency <= 0 {
			concurrency = 1
		}
		_, err := t.Group(ctx, items, tasklist.GroupOptions{
			Concurrency: concurrency,
			StopOnError: p.StopOnError,
		})
		return err
	}
}

func (p *Playback) step(step Step) tasklist.Func {
	return func(ctx context.Context, t *tasklist.Task) error {
		if step.Status != "" {
			t.SetStatus(step.Status)
		}
		if err := sleep(ctx, p.Config.StepDelay); err != nil {
			return err
		}

		w := t.Stream(previewLines)
		defer w.Close()

		play := func(lines []string) error {
			for _, line := range lines {
				if err := sleep(ctx, p.Config.LineDelay); err != nil {
					return err
				}
				fmt.Fprintln(w, line)
			}
			return nil
		}

		switch step.Outcome {
		case OutcomeFlaky:
			if err := play(step.Lines[:len(step.Lines)/2]); err != nil {
				return err
			}
			fmt.Fprintln(w, "error: connection reset by peer")
			t.SetStatus("retrying")
			if err := play(step.Lines); err != nil {
				return err
			}
			t.SetStatus(step.Status)
			t.SetWarning("succeeded after 1 retry")
			return nil
		case OutcomeFail:
			if err := play(step.Lines[:len(step.Lines)/2]); err != nil {
				return err
			}
			return ErrInjectedFailure
		default:
			return play(step.Lines)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return context.Cause(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
