package display

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type styles struct {
	gray   lipgloss.Style
	dim    lipgloss.Style
	yellow lipgloss.Style
	green  lipgloss.Style
	red    lipgloss.Style
}

// newStyles builds the palette. Without colors every style renders its
// input unchanged.
func newStyles(useColors bool) styles {
	r := lipgloss.NewRenderer(io.Discard)
	if useColors {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		gray:   r.NewStyle().Foreground(lipgloss.Color("8")),
		dim:    r.NewStyle().Faint(true),
		yellow: r.NewStyle().Foreground(lipgloss.Color("3")),
		green:  r.NewStyle().Foreground(lipgloss.Color("2")),
		red:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
