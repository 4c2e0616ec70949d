package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  LevelWarn,
		Format: "text",
		Output: &buf,
	})

	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String(), "messages below the configured level should be suppressed")

	logger.Warn(ctx, nil, "warn message")
	logger.Error(ctx, errors.New("boom"), "error message")

	output := buf.String()
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
	assert.Contains(t, output, "boom")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	logger.Info(context.Background(), "structured message", "form_id", "contact")

	output := buf.String()
	require.NotEmpty(t, output)
	assert.Contains(t, output, `"msg":"structured message"`)
	assert.Contains(t, output, `"form_id":"contact"`)
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	child := logger.WithComponent("forms")
	child.Info(context.Background(), "validated")

	assert.Contains(t, buf.String(), `"component":"forms"`)
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  LevelInfo,
		Format: "json",
		Output: &buf,
	})

	child := logger.With("field", "email")
	child.Info(context.Background(), "first")
	child.Info(context.Background(), "second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, `"field":"email"`)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestNopLoggerDoesNothing(t *testing.T) {
	var logger Logger = NopLogger{}
	logger = logger.With("a", 1).WithComponent("x")
	logger.Info(context.Background(), "ignored")
	logger.Error(context.Background(), errors.New("ignored"), "ignored")
}
