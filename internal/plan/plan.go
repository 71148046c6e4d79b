// Package plan reads task files and journals their runs.
//
// A task file is YAML:
//
//	name: release
//	concurrency: 2
//	stop_on_error: true
//	tasks:
//	  - title: Lint
//	    run: make lint
//	  - title: Build
//	    tasks:
//	      - title: linux
//	        run: GOOS=linux go build ./...
//	      - title: darwin
//	        run: GOOS=darwin go build ./...
package plan

// Plan is a parsed task file.
type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Concurrency applies to the top-level tasks. Zero falls back to the
	// configured default; a negative value is unbounded.
	Concurrency int    `yaml:"concurrency,omitempty"`
	StopOnError *bool  `yaml:"stop_on_error,omitempty"`
	Tasks       []Task `yaml:"tasks"`

	// SourceFile is the path the plan was loaded from.
	SourceFile string `yaml:"-"`
}

// Task is a command, a group of nested tasks, or both. The command runs
// first; nested tasks run when it succeeds.
type Task struct {
	Title string            `yaml:"title"`
	Run   string            `yaml:"run,omitempty"`
	Dir   string            `yaml:"dir,omitempty"`
	Env   map[string]string `yaml:"env,omitempty"`
	// Preview is the number of output lines shown under the running task.
	// Zero uses the configured default; a negative value disables it.
	Preview     int    `yaml:"preview,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	StopOnError *bool  `yaml:"stop_on_error,omitempty"`
	Tasks       []Task `yaml:"tasks,omitempty"`
}

// Count returns the number of tasks in the plan, nested ones included.
func (p *Plan) Count() int {
	return countTasks(p.Tasks)
}

func countTasks(tasks []Task) int {
	n := 0
	for i := range tasks {
		n += 1 + countTasks(tasks[i].Tasks)
	}
	return n
}

// Commands returns the number of tasks that run a command.
func (p *Plan) Commands() int {
	return countCommands(p.Tasks)
}

func countCommands(tasks []Task) int {
	n := 0
	for i := range tasks {
		if tasks[i].Run != "" {
			n++
		}
		n += countCommands(tasks[i].Tasks)
	}
	return n
}

// Group settings resolved against defaults.
func resolveConcurrency(own, fallback int) int {
	switch {
	case own < 0:
		return 0
	case own > 0:
		return own
	default:
		return fallback
	}
}

func resolveStopOnError(own *bool, fallback bool) bool {
	if own != nil {
		return *own
	}
	return fallback
}

// GroupConcurrency returns the concurrency of the top-level group, where 0
// means unbounded.
func (p *Plan) GroupConcurrency(fallback int) int {
	return resolveConcurrency(p.Concurrency, fallback)
}

// GroupStopOnError reports whether the top-level group stops on the first failure.
func (p *Plan) GroupStopOnError(fallback bool) bool {
	return resolveStopOnError(p.StopOnError, fallback)
}

// GroupConcurrency returns the concurrency of the task's subtasks.
func (t *Task) GroupConcurrency(fallback int) int {
	return resolveConcurrency(t.Concurrency, fallback)
}

// GroupStopOnError reports whether the task's subtasks stop on the first failure.
func (t *Task) GroupStopOnError(fallback bool) bool {
	return resolveStopOnError(t.StopOnError, fallback)
}

// PreviewLines returns the stream preview height, where 0 disables it.
func (t *Task) PreviewLines(fallback int) int {
	switch {
	case t.Preview < 0:
		return 0
	case t.Preview > 0:
		return t.Preview
	default:
		return fallback
	}
}
