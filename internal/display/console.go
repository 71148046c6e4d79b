package display

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// consoleWriter is a sink for foreign output. Complete lines are handed to
// the renderer as one unit so a redraw never lands mid-line.
type consoleWriter struct {
	r *Renderer
	// pass receives the text when no frame is drawn in place.
	pass io.Writer
	mu   sync.Mutex
	buf  []byte
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	idx := bytes.LastIndexByte(w.buf, '\n')
	if idx == -1 {
		return len(p), nil
	}
	chunk := string(w.buf[:idx+1])
	w.buf = append(w.buf[:0], w.buf[idx+1:]...)
	w.r.writeConsole(chunk, w.pass)
	return len(p), nil
}

// Flush emits a pending partial line, terminated with a newline.
func (w *consoleWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) == 0 {
		return
	}
	chunk := string(w.buf) + "\n"
	w.buf = w.buf[:0]
	w.r.writeConsole(chunk, w.pass)
}

// Redirect substitutes os.Stdout and os.Stderr with pipes whose contents are
// copied into stdout and stderr. The returned restore puts the original
// handles back and waits until everything written so far was forwarded;
// it is safe to call more than once.
func Redirect(stdout, stderr io.Writer) (restore func(), err error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, err
	}

	origOut, origErr := os.Stdout, os.Stderr

	var wg sync.WaitGroup
	forward := func(dst io.Writer, src *os.File) {
		defer wg.Done()
		_, _ = io.Copy(dst, src)
		src.Close()
	}
	wg.Add(2)
	go forward(stdout, outR)
	go forward(stderr, errR)

	os.Stdout, os.Stderr = outW, errW

	var once sync.Once
	return func() {
		once.Do(func() {
			os.Stdout, os.Stderr = origOut, origErr
			outW.Close()
			errW.Close()
			wg.Wait()
		})
	}, nil
}
