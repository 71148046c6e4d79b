package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/pablasso/tasktree/internal/task"
)

const (
	iconPending = "◼"
	iconParent  = "❯"
	iconSuccess = "✔"
	iconError   = "✖"
	iconWarning = "⚠"

	outputPrefix = "→ "
	streamPrefix = "↳ "
	continuation = "  "
	indentUnit   = "  "
)

// tabReplacer matches the tab expansion lipgloss applies to styled text,
// so plain and styled parts of a frame measure the same.
var tabReplacer = strings.NewReplacer("\t", "    ")

// spinnerFrames animates loading leaf nodes.
var spinnerFrames = spinner.MiniDot.Frames

// Framer turns a selection of the task tree into a frame. It does no I/O.
type Framer struct {
	styles styles
}

// NewFramer creates a Framer; useColors toggles every color code at once.
func NewFramer(useColors bool) *Framer {
	return &Framer{styles: newStyles(useColors)}
}

// Render serializes the visible rows, followed by the summary line when
// nodes were hidden.
func (f *Framer) Render(sel Selection, spinnerFrame int) string {
	var b strings.Builder
	f.renderRows(&b, sel.Rows, 0, spinnerFrame)
	if sel.Hidden.Total() > 0 {
		b.WriteString(f.styles.gray.Render(sel.Hidden.Summary()))
		b.WriteString("\n")
	}
	return b.String()
}

func (f *Framer) renderRows(b *strings.Builder, rows []Row, depth, spinnerFrame int) {
	for _, row := range rows {
		f.renderNode(b, row.Node, depth, spinnerFrame)
		f.renderRows(b, row.Children, depth+1, spinnerFrame)
	}
}

// renderNode writes the node's own lines: title, output and stream preview.
func (f *Framer) renderNode(b *strings.Builder, n task.Snapshot, depth, spinnerFrame int) {
	indent := strings.Repeat(indentUnit, depth)

	b.WriteString(indent)
	b.WriteString(f.icon(n, spinnerFrame))
	b.WriteString(" ")
	b.WriteString(tabReplacer.Replace(n.Title))
	if n.Status != "" {
		b.WriteString(" ")
		b.WriteString(f.styles.dim.Render("[" + tabReplacer.Replace(n.Status) + "]"))
	}
	if n.HasElapsed && n.Elapsed >= time.Second {
		b.WriteString(" ")
		b.WriteString(f.styles.dim.Render(FormatElapsed(n.Elapsed)))
	}
	b.WriteString("\n")

	childIndent := indent + indentUnit
	if n.Output != "" {
		for i, line := range strings.Split(strings.TrimRight(n.Output, "\n"), "\n") {
			prefix := continuation
			if i == 0 {
				prefix = outputPrefix
			}
			f.writeGray(b, childIndent, prefix+line)
		}
	}
	for i, line := range n.Stream {
		prefix := continuation
		if i == 0 {
			prefix = streamPrefix
		}
		f.writeGray(b, childIndent, prefix+line)
	}
	if len(n.Stream) > 0 && n.StreamTruncated > 0 {
		f.writeGray(b, childIndent, fmt.Sprintf("%s(+ %d lines)", continuation, n.StreamTruncated))
	}
}

func (f *Framer) writeGray(b *strings.Builder, indent, text string) {
	b.WriteString(indent)
	b.WriteString(f.styles.gray.Render(tabReplacer.Replace(text)))
	b.WriteString("\n")
}

func (f *Framer) icon(n task.Snapshot, spinnerFrame int) string {
	hasChildren := len(n.Children) > 0
	s := f.styles

	switch n.State {
	case task.StatePending:
		return s.gray.Render(iconPending)
	case task.StateLoading:
		if hasChildren {
			return s.yellow.Render(iconParent)
		}
		return s.yellow.Render(spinnerFrames[spinnerFrame%len(spinnerFrames)])
	case task.StateSuccess:
		if hasChildren {
			return s.yellow.Render(iconParent)
		}
		return s.green.Render(iconSuccess)
	case task.StateError:
		if hasChildren {
			return s.red.Render(iconParent)
		}
		return s.red.Render(iconError)
	case task.StateWarning:
		return s.yellow.Render(iconWarning)
	default:
		return " "
	}
}

// nodeRows measures the rows the node's own lines take at the given width.
func (f *Framer) nodeRows(n task.Snapshot, depth, columns int) int {
	var b strings.Builder
	f.renderNode(&b, n, depth, 0)
	return VisualLineCount(b.String(), columns)
}

// FormatElapsed renders a duration as (Ns), (Mm Ss) or (Hh Mm), floored.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)

	switch {
	case secs < 60:
		return fmt.Sprintf("(%ds)", secs)
	case secs < 3600:
		return fmt.Sprintf("(%dm %ds)", secs/60, secs%60)
	default:
		return fmt.Sprintf("(%dh %dm)", secs/3600, (secs%3600)/60)
	}
}
