package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultDataset(t *testing.T) {
	ds, err := LoadDefaultDataset()
	require.NoError(t, err)

	assert.Equal(t, "release pipeline", ds.Name)
	require.NotEmpty(t, ds.Stages)
	for _, stage := range ds.Stages {
		assert.NotEmpty(t, stage.Title)
		for _, step := range stage.Steps {
			assert.NotEmpty(t, step.Title)
			assert.GreaterOrEqual(t, len(step.Lines), 1, "step %q has no output", step.Title)
		}
	}

	steps, lines := ds.counts()
	assert.GreaterOrEqual(t, steps, failTarget)
	assert.Greater(t, lines, steps)
}

func TestParseDataset_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "invalid yaml", data: "stages: [", want: "parse demo fixture"},
		{name: "no stages", data: "name: empty\n", want: "demo fixture has no stages"},
		{name: "empty stage", data: "stages:\n  - title: lonely\n", want: "demo stage 0 (lonely) has no steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDataset([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
