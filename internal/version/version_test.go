package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, CommitSHA, BuildDate
	t.Cleanup(func() { Version, CommitSHA, BuildDate = oldVersion, oldCommit, oldDate })

	Version, CommitSHA, BuildDate = "v1.2.0", "abc123", "2026-01-02"
	assert.Equal(t, "v1.2.0 (commit abc123, built 2026-01-02)", String())
}
