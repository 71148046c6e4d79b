package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releaseFile = `
name: release
concurrency: 2
stop_on_error: true
tasks:
  - title: Lint
    run: make lint
    preview: 3
  - title: Build
    concurrency: -1
    tasks:
      - title: linux
        run: GOOS=linux go build ./...
        env:
          CGO_ENABLED: "0"
      - title: darwin
        run: GOOS=darwin go build ./...
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(releaseFile))
	require.NoError(t, err)

	assert.Equal(t, "release", p.Name)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "make lint", p.Tasks[0].Run)
	assert.Equal(t, map[string]string{"CGO_ENABLED": "0"}, p.Tasks[1].Tasks[0].Env)
	assert.Equal(t, 4, p.Count())
	assert.Equal(t, 3, p.Commands())
}

func TestPlan_GroupSettings(t *testing.T) {
	p, err := Parse([]byte(releaseFile))
	require.NoError(t, err)

	assert.Equal(t, 2, p.GroupConcurrency(1))
	assert.True(t, p.GroupStopOnError(false))

	build := p.Tasks[1]
	assert.Equal(t, 0, build.GroupConcurrency(1), "negative means unbounded")
	assert.True(t, build.GroupStopOnError(true), "unset inherits the fallback")
	assert.False(t, build.GroupStopOnError(false))

	assert.Equal(t, 3, p.Tasks[0].PreviewLines(5))
	assert.Equal(t, 5, build.Tasks[0].PreviewLines(5))
	assert.Equal(t, 0, (&Task{Preview: -1}).PreviewLines(5))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "empty", content: "", wantErr: "task file is empty"},
		{name: "no tasks", content: "name: x\n", wantErr: "task file has no tasks"},
		{name: "missing title", content: "tasks:\n  - run: ls\n", wantErr: "tasks[0]: title is required"},
		{
			name:    "nothing to do",
			content: "tasks:\n  - title: A\n    tasks:\n      - title: B\n",
			wantErr: "tasks[0].tasks[0] (B): needs a run command or nested tasks",
		},
		{name: "unknown key", content: "tasks:\n  - title: A\n    command: ls\n", wantErr: "field command not found"},
		{name: "bad yaml", content: "tasks: [\n", wantErr: "failed to parse task file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks:\n  - title: Test\n    run: go test ./...\n"), 0644))

	p, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "ci", p.Name, "name defaults to the file name")
	assert.Equal(t, path, p.SourceFile)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "failed to read task file")
}

func TestStateDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release.yml")

	assert.Equal(t, filepath.Join(dir, ".tasktree", "release"), StateDir(path))

	created, err := CreateStateDir(path)
	require.NoError(t, err)
	info, err := os.Stat(created)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
