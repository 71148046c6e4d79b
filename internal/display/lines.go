package display

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VisualLineCount returns the number of terminal rows text occupies when
// printed in a terminal of the given width. Escape sequences have no width;
// wide characters count double. A columns value <= 0 means the width is
// unknown and every line counts as one row.
func VisualLineCount(text string, columns int) int {
	if text == "" {
		return 0
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	total := 0
	for _, line := range lines {
		if columns <= 0 {
			total++
			continue
		}
		rows := (ansi.StringWidth(expandTabs(line)) + columns - 1) / columns
		total += max(1, rows)
	}
	return total
}

// terminalTabStop is the column interval terminals advance to on a tab.
const terminalTabStop = 8

// expandTabs replaces tabs with the spaces a terminal would advance by.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for i, part := range strings.Split(line, "\t") {
		if i > 0 {
			pad := terminalTabStop - col%terminalTabStop
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		}
		b.WriteString(part)
		col += ansi.StringWidth(part)
	}
	return b.String()
}
