package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_ScalesToPresetTargets(t *testing.T) {
	ds, err := LoadDefaultDataset()
	require.NoError(t, err)
	steps, lines := ds.counts()

	tests := []struct {
		preset Preset
		target time.Duration
	}{
		{preset: PresetQuick, target: 5 * time.Second},
		{preset: PresetMedium, target: 15 * time.Second},
		{preset: PresetSlow, target: 45 * time.Second},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg, err := NewConfig(tt.preset, ds)
			require.NoError(t, err)

			estimated := time.Duration(lines)*cfg.LineDelay + time.Duration(steps)*cfg.StepDelay
			assert.InDelta(t, float64(tt.target), float64(estimated), float64(50*time.Millisecond),
				"LineDelay=%s StepDelay=%s", cfg.LineDelay, cfg.StepDelay)
		})
	}
}

func TestNewConfig_Errors(t *testing.T) {
	_, err := NewConfig(PresetQuick, nil)
	assert.EqualError(t, err, "nil dataset")

	_, err = NewConfig(Preset("turbo"), &Dataset{})
	assert.EqualError(t, err, `unknown demo preset "turbo"`)
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset(" Medium ")
	require.NoError(t, err)
	assert.Equal(t, PresetMedium, p)

	_, err = ParsePreset("fast")
	assert.EqualError(t, err, `invalid demo preset "fast" (valid: quick, medium, slow)`)
}

func TestClampDuration(t *testing.T) {
	assert.Equal(t, time.Second, clampDuration(time.Millisecond, time.Second, time.Minute))
	assert.Equal(t, time.Minute, clampDuration(time.Hour, time.Second, time.Minute))
	assert.Equal(t, 5*time.Second, clampDuration(5*time.Second, time.Second, time.Minute))
}
