package executor

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRunner_StreamsOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewCommandRunner()

	err := r.Run(context.Background(), "echo out; echo err >&2", Writers{Out: &stdout, Err: &stderr})

	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestCommandRunner_ExitStatus(t *testing.T) {
	r := NewCommandRunner()

	err := r.Run(context.Background(), "exit 3", Writers{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})

	assert.EqualError(t, err, "exit 3: exit status 3")
}

func TestCommandRunner_Env(t *testing.T) {
	var stdout bytes.Buffer
	r := &CommandRunner{Env: []string{"TASKTREE_TEST_VALUE=42"}, Dir: t.TempDir()}

	err := r.Run(context.Background(), "echo $TASKTREE_TEST_VALUE", Writers{Out: &stdout, Err: &bytes.Buffer{}})

	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout.String())
}

func TestCommandRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r := NewCommandRunner()

	err := r.Run(ctx, "sleep 5", Writers{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandRunner_UsesCommandContext(t *testing.T) {
	original := CommandContext
	defer func() { CommandContext = original }()

	var gotName string
	var gotArgs []string
	CommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName = name
		gotArgs = args
		return exec.CommandContext(ctx, "true")
	}

	r := &CommandRunner{Shell: "bash"}
	require.NoError(t, r.Run(context.Background(), "make test", nil))

	assert.Equal(t, "bash", gotName)
	assert.Equal(t, []string{"-c", "make test"}, gotArgs)
}
