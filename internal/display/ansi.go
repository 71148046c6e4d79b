package display

import (
	"strconv"
	"strings"
)

const (
	csi        = "\x1b["
	cursorHide = csi + "?25l"
	cursorShow = csi + "?25h"
	eraseLine  = csi + "2K"
	cursorLeft = csi + "G"
	eraseDown  = csi + "J"
)

func cursorUp(n int) string {
	return csi + strconv.Itoa(n) + "A"
}

// eraseRows clears rows lines above the cursor plus the current line and
// leaves the cursor at column 0 of the topmost cleared line.
func eraseRows(rows int) string {
	var b strings.Builder
	for i := 0; i < rows; i++ {
		b.WriteString(eraseLine)
		b.WriteString(cursorUp(1))
	}
	b.WriteString(eraseLine)
	b.WriteString(cursorLeft)
	return b.String()
}
