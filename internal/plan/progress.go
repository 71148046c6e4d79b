package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pablasso/tasktree/internal/task"
)

const progressLogFileName = "progress.log"

// Event type constants for progress logging.
const (
	EventRunStarted    = "run_started"
	EventRunCompleted  = "run_completed"
	EventRunFailed     = "run_failed"
	EventRunCancelled  = "run_cancelled"
	EventTaskStarted   = "task_started"
	EventTaskCompleted = "task_completed"
	EventTaskFailed    = "task_failed"
)

// ProgressEvent is one line of the journal.
type ProgressEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	RunID     string         `json:"run_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// ProgressLogger appends run and task events to a JSON Lines file. It
// receives task events from the task list, so failures to write are kept
// for Err rather than returned.
type ProgressLogger struct {
	path  string
	runID string
	now   func() time.Time

	mu      sync.Mutex
	started map[string]time.Time
	err     error
}

// NewProgressLogger creates a journal in the given state directory.
func NewProgressLogger(stateDir, runID string) *ProgressLogger {
	return &ProgressLogger{
		path:    filepath.Join(stateDir, progressLogFileName),
		runID:   runID,
		now:     time.Now,
		started: make(map[string]time.Time),
	}
}

// Path returns the journal file path.
func (p *ProgressLogger) Path() string { return p.path }

// Log appends an event to the journal.
func (p *ProgressLogger) Log(event string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logLocked(event, data)
}

func (p *ProgressLogger) logLocked(event string, data map[string]any) error {
	entry := ProgressEvent{
		Timestamp: p.now(),
		Event:     event,
		RunID:     p.runID,
		Data:      data,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}

// record logs an event from a callback and keeps the first failure.
func (p *ProgressLogger) record(event string, data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.logLocked(event, data); err != nil && p.err == nil {
		p.err = err
	}
}

// Err returns the first error hit while journaling task events.
func (p *ProgressLogger) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// RunStarted logs a run_started event.
func (p *ProgressLogger) RunStarted(name, source string, tasks int) error {
	return p.Log(EventRunStarted, map[string]any{
		"name":   name,
		"source": source,
		"tasks":  tasks,
	})
}

// RunCompleted logs a run_completed event with summary statistics.
func (p *ProgressLogger) RunCompleted(total, succeeded int, duration time.Duration) error {
	return p.Log(EventRunCompleted, map[string]any{
		"total_tasks":     total,
		"succeeded_tasks": succeeded,
		"duration_ms":     duration.Milliseconds(),
	})
}

// RunFailed logs a run_failed event.
func (p *ProgressLogger) RunFailed(err error, duration time.Duration) error {
	return p.Log(EventRunFailed, map[string]any{
		"error":       err.Error(),
		"duration_ms": duration.Milliseconds(),
	})
}

// RunCancelled logs a run_cancelled event.
func (p *ProgressLogger) RunCancelled(reason string) error {
	return p.Log(EventRunCancelled, map[string]any{
		"reason": reason,
	})
}

// OnTaskStart logs a task_started event.
func (p *ProgressLogger) OnTaskStart(id, title string) {
	p.mu.Lock()
	p.started[id] = p.now()
	p.mu.Unlock()

	p.record(EventTaskStarted, map[string]any{
		"task_id": id,
		"title":   title,
	})
}

// OnTaskComplete logs a task_completed event.
func (p *ProgressLogger) OnTaskComplete(id, title string, state task.State) {
	p.record(EventTaskCompleted, map[string]any{
		"task_id":     id,
		"title":       title,
		"state":       state.String(),
		"duration_ms": p.since(id).Milliseconds(),
	})
}

// OnTaskFailed logs a task_failed event.
func (p *ProgressLogger) OnTaskFailed(id, title string, err error) {
	p.record(EventTaskFailed, map[string]any{
		"task_id":     id,
		"title":       title,
		"error":       err.Error(),
		"duration_ms": p.since(id).Milliseconds(),
	})
}

func (p *ProgressLogger) since(id string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	start, ok := p.started[id]
	if !ok {
		return 0
	}
	delete(p.started, id)
	return p.now().Sub(start)
}
