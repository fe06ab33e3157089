package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", "info")

	log.Debug("hidden")
	log.Info("request", "status", 201)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.EqualValues(t, 201, entry["status"])
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty", "warn")

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.With("component", "relay").WithGroup("upstream").Warn("slow", "elapsed", "2s")
	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "slow")
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "upstream.elapsed")
}

func TestPrettyHandler_NilLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	assert.False(t, h.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, h.Enabled(t.Context(), slog.LevelInfo))
}
