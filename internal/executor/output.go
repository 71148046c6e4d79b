package executor

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// OutputWriter provides writers for capturing command output.
type OutputWriter interface {
	Stdout() io.Writer
	Stderr() io.Writer
}

// Writers is an OutputWriter over two plain writers.
type Writers struct {
	Out io.Writer
	Err io.Writer
}

// Stdout returns the writer for stdout.
func (w Writers) Stdout() io.Writer { return w.Out }

// Stderr returns the writer for stderr.
func (w Writers) Stderr() io.Writer { return w.Err }

// OutputCapture tees command output into a log file.
type OutputCapture struct {
	logFile *lockedFile
	out     io.Writer
	err     io.Writer
}

// lockedFile serializes writes from the stdout and stderr copiers.
type lockedFile struct {
	mu sync.Mutex
	f  *os.File
}

func (l *lockedFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Write(p)
}

// NewOutputCapture wraps next so everything it receives is also appended to
// the file at logPath. An empty logPath disables the log.
func NewOutputCapture(logPath string, next OutputWriter) (*OutputCapture, error) {
	oc := &OutputCapture{out: io.Discard, err: io.Discard}
	if next != nil {
		oc.out = next.Stdout()
		oc.err = next.Stderr()
	}
	if logPath == "" {
		return oc, nil
	}

	// Open in append mode - preserves history across runs
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output log: %w", err)
	}
	oc.logFile = &lockedFile{f: f}
	oc.out = io.MultiWriter(oc.out, oc.logFile)
	oc.err = io.MultiWriter(oc.err, oc.logFile)
	return oc, nil
}

// Stdout returns the writer for stdout.
func (oc *OutputCapture) Stdout() io.Writer { return oc.out }

// Stderr returns the writer for stderr.
func (oc *OutputCapture) Stderr() io.Writer { return oc.err }

// Tee returns an OutputWriter that writes to next and to the log file.
// Without a log file it returns next unchanged.
func (oc *OutputCapture) Tee(next OutputWriter) OutputWriter {
	if oc.logFile == nil {
		return next
	}
	return Writers{
		Out: io.MultiWriter(next.Stdout(), oc.logFile),
		Err: io.MultiWriter(next.Stderr(), oc.logFile),
	}
}

// Close closes the log file. Safe to call when no log file is open.
func (oc *OutputCapture) Close() error {
	if oc.logFile != nil {
		return oc.logFile.f.Close()
	}
	return nil
}

// WriteTaskHeader writes a header line to the log before a command runs.
// Safe to call when no log file is open.
func (oc *OutputCapture) WriteTaskHeader(title, command string) {
	if oc.logFile == nil {
		return
	}
	fmt.Fprintf(oc.logFile, "\n=== %s ===\n$ %s\nStarted: %s\n\n", title, command, time.Now().Format(time.RFC3339))
}

// WriteTaskFooter writes a footer line to the log after a command finished.
// Safe to call when no log file is open.
func (oc *OutputCapture) WriteTaskFooter(title string, err error) {
	if oc.logFile == nil {
		return
	}
	result := "SUCCESS"
	if err != nil {
		result = "FAILED: " + err.Error()
	}
	fmt.Fprintf(oc.logFile, "\n=== %s: %s ===\n\n", title, result)
}
