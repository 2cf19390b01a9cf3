package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mdobak/go-xerrors"
	"github.com/stretchr/testify/assert"
)

func TestErrorsCarryTrace(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo)

	err := xerrors.New(errors.New("disk full"))
	log.Error("failed to save library", slog.Any("error", err))

	out := buf.String()
	assert.Contains(t, out, "failed to save library")
	assert.Contains(t, out, "error.msg=")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "error.trace=")
	assert.Contains(t, out, "logging_test.go")
}

func TestPlainErrorsHaveNoTrace(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo).Warn("skipped", slog.Any("error", errors.New("bad file")))
	assert.Contains(t, buf.String(), "bad file")
	assert.NotContains(t, buf.String(), "trace")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))

	var buf bytes.Buffer
	New(&buf, slog.LevelWarn).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	log := GetLogger()
	SetLevel("error")
	assert.False(t, log.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))

	SetLevel("debug")
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}
