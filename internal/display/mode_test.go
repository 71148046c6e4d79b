package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		value string
		want  Mode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"Interactive", ModeInteractive},
		{" append ", ModeAppend},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "value %q", tt.value)
	}

	_, err := ParseMode("tui")
	assert.EqualError(t, err, `invalid render mode "tui" (valid: auto, interactive, append)`)
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		value string
		want  ColorMode
	}{
		{"", ColorAuto},
		{"ALWAYS", ColorAlways},
		{"never", ColorNever},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "value %q", tt.value)
	}

	_, err := ParseColorMode("256")
	assert.Error(t, err)
}
