package executor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputCapture_WithoutLog(t *testing.T) {
	var out bytes.Buffer
	oc, err := NewOutputCapture("", Writers{Out: &out, Err: &out})
	require.NoError(t, err)

	_, _ = oc.Stdout().Write([]byte("hello\n"))
	oc.WriteTaskHeader("build", "make")
	oc.WriteTaskFooter("build", nil)

	assert.Equal(t, "hello\n", out.String())
	assert.NoError(t, oc.Close())
}

func TestOutputCapture_TeesIntoLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "output.log")
	var out, errOut bytes.Buffer

	oc, err := NewOutputCapture(logPath, Writers{Out: &out, Err: &errOut})
	require.NoError(t, err)

	oc.WriteTaskHeader("build", "make all")
	_, _ = oc.Stdout().Write([]byte("compiling\n"))
	_, _ = oc.Stderr().Write([]byte("warning: unused\n"))
	oc.WriteTaskFooter("build", errors.New("exit status 2"))
	require.NoError(t, oc.Close())

	assert.Equal(t, "compiling\n", out.String())
	assert.Equal(t, "warning: unused\n", errOut.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "=== build ===\n$ make all\n")
	assert.Contains(t, log, "compiling\nwarning: unused\n")
	assert.Contains(t, log, "=== build: FAILED: exit status 2 ===")
}

func TestOutputCapture_AppendsAcrossRuns(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "output.log")

	for _, title := range []string{"first", "second"} {
		oc, err := NewOutputCapture(logPath, nil)
		require.NoError(t, err)
		oc.WriteTaskFooter(title, nil)
		require.NoError(t, oc.Close())
	}

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "first: SUCCESS"))
	assert.Equal(t, 1, strings.Count(string(data), "second: SUCCESS"))
}

func TestOutputCapture_BadPath(t *testing.T) {
	_, err := NewOutputCapture(filepath.Join(t.TempDir(), "missing", "output.log"), nil)

	assert.ErrorContains(t, err, "failed to open output log")
}

func TestOutputCapture_Tee(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "output.log")
	oc, err := NewOutputCapture(logPath, nil)
	require.NoError(t, err)

	var a, b bytes.Buffer
	wa := oc.Tee(Writers{Out: &a, Err: &a})
	wb := oc.Tee(Writers{Out: &b, Err: &b})
	_, _ = wa.Stdout().Write([]byte("from a\n"))
	_, _ = wb.Stderr().Write([]byte("from b\n"))
	require.NoError(t, oc.Close())

	assert.Equal(t, "from a\n", a.String())
	assert.Equal(t, "from b\n", b.String())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "from a\nfrom b\n", string(data))
}

func TestOutputCapture_TeeWithoutLog(t *testing.T) {
	oc, err := NewOutputCapture("", nil)
	require.NoError(t, err)

	var out bytes.Buffer
	next := Writers{Out: &out, Err: &out}
	assert.Equal(t, next, oc.Tee(next))
}
