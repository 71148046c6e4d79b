package demo

import (
	"fmt"
	"strings"
	"time"
)

// Preset controls demo playback pacing via a target duration.
type Preset string

const (
	PresetQuick  Preset = "quick"
	PresetMedium Preset = "medium"
	PresetSlow   Preset = "slow"
)

func ParsePreset(value string) (Preset, error) {
	switch p := Preset(strings.ToLower(strings.TrimSpace(value))); p {
	case PresetQuick, PresetMedium, PresetSlow:
		return p, nil
	default:
		return "", fmt.Errorf("invalid demo preset %q (valid: quick, medium, slow)", value)
	}
}

func targetDuration(preset Preset) (time.Duration, error) {
	switch preset {
	case PresetQuick:
		return 5 * time.Second, nil
	case PresetMedium:
		return 15 * time.Second, nil
	case PresetSlow:
		return 45 * time.Second, nil
	default:
		return 0, fmt.Errorf("unknown demo preset %q", preset)
	}
}

// Config controls demo playback pacing.
type Config struct {
	Preset    Preset
	LineDelay time.Duration
	StepDelay time.Duration
}

var (
	baseLineDelay = 120 * time.Millisecond
	baseStepDelay = 400 * time.Millisecond

	minLineDelay = 5 * time.Millisecond
	maxLineDelay = 2 * time.Second

	minStepDelay = 0 * time.Second
	maxStepDelay = 10 * time.Second
)

// NewConfig computes delays so that playing dataset sequentially takes
// roughly the preset's target duration. Concurrent stages finish sooner.
func NewConfig(preset Preset, dataset *Dataset) (Config, error) {
	target, err := targetDuration(preset)
	if err != nil {
		return Config{}, err
	}
	if dataset == nil {
		return Config{}, fmt.Errorf("nil dataset")
	}

	steps, lines := dataset.counts()
	base := time.Duration(lines)*baseLineDelay + time.Duration(steps)*baseStepDelay
	if base <= 0 {
		return Config{Preset: preset, LineDelay: baseLineDelay, StepDelay: baseStepDelay}, nil
	}
	scale := float64(target) / float64(base)

	return Config{
		Preset:    preset,
		LineDelay: clampDuration(time.Duration(float64(baseLineDelay)*scale), minLineDelay, maxLineDelay),
		StepDelay: clampDuration(time.Duration(float64(baseStepDelay)*scale), minStepDelay, maxStepDelay),
	}, nil
}

func clampDuration(value, min, max time.Duration) time.Duration {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
