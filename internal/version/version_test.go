package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShortUsesLdflagsValues(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	defer func() { Version, GitCommit = oldVersion, oldCommit }()

	Version = "1.2.0"
	GitCommit = "abcdef1234567890"

	assert.Equal(t, "1.2.0 (abcdef1)", Short())
}

func TestDetailedIncludesPlatform(t *testing.T) {
	out := Detailed()
	assert.Contains(t, out, "Version: ")
	assert.Contains(t, out, "Go: go")
	assert.Contains(t, out, "Platform: ")
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("").IsZero())
	assert.True(t, parseBuildTime("not a time").IsZero())

	parsed := parseBuildTime("2026-08-24T10:30:00Z")
	assert.Equal(t, time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC), parsed)
}
