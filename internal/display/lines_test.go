package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisualLineCount(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		columns int
		want    int
	}{
		{name: "empty", text: "", columns: 10, want: 0},
		{name: "exact width", text: "1234567890\n", columns: 10, want: 1},
		{name: "wraps once", text: "12345678901234567890\n", columns: 10, want: 2},
		{name: "one over wraps", text: "12345678901\n", columns: 10, want: 2},
		{name: "no trailing newline", text: "a\nb", columns: 10, want: 2},
		{name: "blank lines count", text: "a\n\nb\n", columns: 10, want: 3},
		{name: "unknown width", text: "12345678901234567890\nx\n", columns: 0, want: 2},
		{name: "escape codes have no width", text: "\x1b[31m1234567890\x1b[0m\n", columns: 10, want: 1},
		{name: "wide characters count double", text: "日本語\n", columns: 4, want: 2},
		{name: "emoji counts double", text: "🚀🚀🚀\n", columns: 5, want: 2},
		{name: "tab advances to the next stop", text: "a\tb\n", columns: 8, want: 2},
		{name: "tabs fit when wide enough", text: "a\tb\n", columns: 9, want: 1},
		{name: "two tabs", text: "\t\tx\n", columns: 16, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisualLineCount(tt.text, tt.columns))
		})
	}
}

func TestVisualLineCount_StylingInvariant(t *testing.T) {
	texts := []string{"hello", "12345678901234567890", "日本語テキスト", "a\nbb\nccc"}
	wrappers := [][2]string{
		{"\x1b[32m", "\x1b[0m"},
		{"\x1b[1m\x1b[33m", "\x1b[22m\x1b[39m"},
		{"\x1b[2m", "\x1b[0m"},
	}

	for _, text := range texts {
		for columns := 1; columns <= 12; columns++ {
			plain := VisualLineCount(text+"\n", columns)
			for _, w := range wrappers {
				styled := w[0] + text + w[1] + "\n"
				assert.Equal(t, plain, VisualLineCount(styled, columns), "text %q at %d columns", text, columns)
			}
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "zero", duration: 0, expected: "(0s)"},
		{name: "below a second", duration: 999 * time.Millisecond, expected: "(0s)"},
		{name: "one second", duration: time.Second, expected: "(1s)"},
		{name: "59 seconds", duration: 59*time.Second + 999*time.Millisecond, expected: "(59s)"},
		{name: "one minute", duration: time.Minute, expected: "(1m 0s)"},
		{name: "minutes and seconds", duration: 5*time.Minute + 30*time.Second, expected: "(5m 30s)"},
		{name: "one hour", duration: time.Hour, expected: "(1h 0m)"},
		{name: "hours and minutes", duration: 2*time.Hour + 34*time.Minute + 56*time.Second, expected: "(2h 34m)"},
		{name: "negative", duration: -time.Second, expected: "(0s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatElapsed(tt.duration))
		})
	}
}

func TestEraseRows(t *testing.T) {
	assert.Equal(t, "\x1b[2K\x1b[G", eraseRows(0))
	assert.Equal(t, "\x1b[2K\x1b[1A\x1b[2K\x1b[1A\x1b[2K\x1b[G", eraseRows(2))
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "plain", expandTabs("plain"))
	assert.Equal(t, "a       b", expandTabs("a\tb"))
	assert.Equal(t, "        ", expandTabs("\t"))
	assert.Equal(t, "12345678        x", expandTabs("12345678\tx"))
}
