package logging

import (
	"bytes"
	"encoding/json"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l = New(Options{Output: &buf, Verbose: true})
	l.Debug("traced", zap.String("file", "react/intro.md"))
	assert.Contains(t, buf.String(), "traced")
	assert.Contains(t, buf.String(), "react/intro.md")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Format: "json"})
	l.Warn("skipping file", zap.String("file", "a.pdf"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "skipping file", entry["msg"])
	assert.Equal(t, "a.pdf", entry["file"])
}

func TestNewObserved(t *testing.T) {
	l, logs := NewObserved()
	l.Debug("processing file")
	assert.Equal(t, 1, logs.FilterMessage("processing file").Len())
}

func TestIsStdoutSyncError(t *testing.T) {
	assert.True(t, isStdoutSyncError(syscall.EINVAL))
	assert.True(t, isStdoutSyncError(syscall.ENOTTY))
	assert.False(t, isStdoutSyncError(syscall.EIO))
}
