package plan

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/tasktree/internal/task"
)

func readEvents(t *testing.T, path string) []ProgressEvent {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []ProgressEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e ProgressEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e), "line %q", scanner.Text())
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestProgressLogger_Log(t *testing.T) {
	dir := t.TempDir()
	p := NewProgressLogger(dir, "run-1")

	require.NoError(t, p.Log("test_event", map[string]any{"key": "value"}))

	events := readEvents(t, filepath.Join(dir, progressLogFileName))
	require.Len(t, events, 1)
	assert.Equal(t, "test_event", events[0].Event)
	assert.Equal(t, "run-1", events[0].RunID)
	assert.Equal(t, "value", events[0].Data["key"])
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestProgressLogger_RunLifecycle(t *testing.T) {
	dir := t.TempDir()
	p := NewProgressLogger(dir, "run-2")

	require.NoError(t, p.RunStarted("release", "release.yaml", 4))
	require.NoError(t, p.RunFailed(errors.New("lint failed"), 1500*time.Millisecond))
	require.NoError(t, p.RunCancelled("interrupted"))
	require.NoError(t, p.RunCompleted(4, 4, 2*time.Second))

	events := readEvents(t, p.Path())
	require.Len(t, events, 4)
	assert.Equal(t, EventRunStarted, events[0].Event)
	assert.Equal(t, float64(4), events[0].Data["tasks"])
	assert.Equal(t, "lint failed", events[1].Data["error"])
	assert.Equal(t, float64(1500), events[1].Data["duration_ms"])
	assert.Equal(t, EventRunCancelled, events[2].Event)
	assert.Equal(t, float64(2000), events[3].Data["duration_ms"])
}

func TestProgressLogger_TaskEvents(t *testing.T) {
	dir := t.TempDir()
	p := NewProgressLogger(dir, "run-3")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return now }

	p.OnTaskStart("a", "Lint")
	now = now.Add(250 * time.Millisecond)
	p.OnTaskComplete("a", "Lint", task.StateWarning)
	p.OnTaskStart("b", "Build")
	p.OnTaskFailed("b", "Build", errors.New("exit status 2"))
	require.NoError(t, p.Err())

	events := readEvents(t, p.Path())
	require.Len(t, events, 4)
	assert.Equal(t, EventTaskStarted, events[0].Event)
	assert.Equal(t, "Lint", events[0].Data["title"])
	assert.Equal(t, EventTaskCompleted, events[1].Event)
	assert.Equal(t, "warning", events[1].Data["state"])
	assert.Equal(t, float64(250), events[1].Data["duration_ms"])
	assert.Equal(t, EventTaskFailed, events[3].Event)
	assert.Equal(t, "exit status 2", events[3].Data["error"])
}

func TestProgressLogger_ConcurrentTasks(t *testing.T) {
	p := NewProgressLogger(t.TempDir(), "run-4")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			p.OnTaskStart(id, id)
			p.OnTaskComplete(id, id, task.StateSuccess)
		}()
	}
	wg.Wait()

	assert.Len(t, readEvents(t, p.Path()), 40)
}

func TestProgressLogger_KeepsFirstError(t *testing.T) {
	p := NewProgressLogger(filepath.Join(t.TempDir(), "missing"), "run-5")

	p.OnTaskStart("a", "A")
	p.OnTaskFailed("a", "A", errors.New("boom"))

	assert.Error(t, p.Err())
}
