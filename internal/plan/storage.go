package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const stateDirName = ".tasktree"

// Load reads and validates a task file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.SourceFile = path
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse decodes and validates task file contents. Unknown keys are errors.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("task file is empty")
		}
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every task has a title and something to do.
func (p *Plan) Validate() error {
	if len(p.Tasks) == 0 {
		return errors.New("task file has no tasks")
	}
	return validateTasks(p.Tasks, "tasks")
}

func validateTasks(tasks []Task, path string) error {
	for i := range tasks {
		t := &tasks[i]
		at := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%s: title is required", at)
		}
		if t.Run == "" && len(t.Tasks) == 0 {
			return fmt.Errorf("%s (%s): needs a run command or nested tasks", at, t.Title)
		}
		if err := validateTasks(t.Tasks, at+".tasks"); err != nil {
			return err
		}
	}
	return nil
}

// StateDir returns the directory holding the journal and output log of the
// task file at path: .tasktree/<name> next to the file.
func StateDir(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), stateDirName, name)
}

// CreateStateDir creates the state directory for the task file at path.
func CreateStateDir(path string) (string, error) {
	dir := StateDir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}
