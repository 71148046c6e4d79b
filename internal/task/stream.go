package task

import (
	"io"
	"strings"
)

const defaultStreamLines = 5

// streamBuffer keeps the tail of a piped stream.
type streamBuffer struct {
	max       int
	lines     []string
	truncated int
	partial   strings.Builder
}

func (b *streamBuffer) push(line string) {
	// A carriage return redraws the line in a terminal; keep what is visible.
	if idx := strings.LastIndexByte(line, '\r'); idx >= 0 {
		line = line[idx+1:]
	}
	b.lines = append(b.lines, line)
	if overflow := len(b.lines) - b.max; overflow > 0 {
		b.lines = append(b.lines[:0:0], b.lines[overflow:]...)
		b.truncated += overflow
	}
}

// Stream attaches a rolling preview of the last lines written to the
// returned writer. lines <= 0 uses the default of five lines. A second call
// replaces the previous preview.
func (n *Node) Stream(lines int) io.WriteCloser {
	if lines <= 0 {
		lines = defaultStreamLines
	}
	buf := &streamBuffer{max: lines}
	n.update(func() { n.stream = buf })
	return &streamWriter{node: n, buf: buf}
}

type streamWriter struct {
	node *Node
	buf  *streamBuffer
}

// Write buffers partial lines and publishes complete ones.
func (w *streamWriter) Write(p []byte) (int, error) {
	w.node.update(func() {
		w.buf.partial.Write(p)
		content := w.buf.partial.String()
		for {
			idx := strings.IndexByte(content, '\n')
			if idx == -1 {
				break
			}
			w.buf.push(strings.TrimSuffix(content[:idx], "\r"))
			content = content[idx+1:]
		}
		w.buf.partial.Reset()
		w.buf.partial.WriteString(content)
	})
	return len(p), nil
}

// Close publishes a trailing partial line.
func (w *streamWriter) Close() error {
	w.node.update(func() {
		if w.buf.partial.Len() > 0 {
			w.buf.push(w.buf.partial.String())
			w.buf.partial.Reset()
		}
	})
	return nil
}
