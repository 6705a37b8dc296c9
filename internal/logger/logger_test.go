package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/worldforge/internal/config"
)

func TestNewHandler_Format(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{name: "production writes json", environment: "production", wantJSON: true},
		{name: "development writes text", environment: "development", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(NewHandler(&config.Config{Environment: tt.environment, LogLevel: slog.LevelInfo}, &buf))
			l.Info("Era selected", "era", "viking_9th")

			var m map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &m) == nil
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
			assert.Contains(t, buf.String(), "viking_9th")
		})
	}
}

func TestNewHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler(&config.Config{LogLevel: slog.LevelWarn}, &buf))

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithSession(t *testing.T) {
	var buf bytes.Buffer
	l := WithSession(slog.New(slog.NewTextHandler(&buf, nil)), "abc-123")
	l.Info("saved")
	assert.Contains(t, buf.String(), "session_id=abc-123")
}

func TestRecorder_KeepsLastN(t *testing.T) {
	rec := NewRecorder(nil, slog.LevelInfo, 3)
	l := slog.New(rec)

	for i := 1; i <= 5; i++ {
		l.Info(fmt.Sprintf("msg %d", i))
	}

	entries := rec.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "msg 3", entries[0].Message)
	assert.Equal(t, "msg 5", entries[2].Message)

	rec.Clear()
	assert.Empty(t, rec.Entries())
}

func TestRecorder_PartialBuffer(t *testing.T) {
	rec := NewRecorder(nil, nil, 0)
	l := slog.New(rec)
	l.Info("one")
	l.Debug("below level")
	l.Error("two", "error", errors.New("boom"))

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].Message)
	assert.Equal(t, slog.LevelError, entries[1].Level)
	assert.Equal(t, "error=boom", entries[1].Attrs)
	assert.True(t, strings.HasSuffix(entries[1].String(), "ERROR two error=boom"))
}

func TestRecorder_AttrsAndGroups(t *testing.T) {
	rec := NewRecorder(nil, slog.LevelInfo, 10)
	l := slog.New(rec).With("session_id", "s1").WithGroup("bridge").With("host", "localhost")

	l.Info("Connected", "port", 8765)

	entries := rec.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "session_id=s1 bridge.host=localhost bridge.port=8765", entries[0].Attrs)
}

func TestRecorder_ForwardsToNext(t *testing.T) {
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	rec := NewRecorder(next, slog.LevelWarn, 10)
	l := slog.New(rec).With("component", "bridge")

	l.Debug("queued")
	l.Warn("refused")

	assert.Contains(t, buf.String(), "queued")
	assert.Contains(t, buf.String(), "component=bridge")
	entries := rec.Entries()
	require.Len(t, entries, 1, "only entries at the recorder level are kept")
	assert.Equal(t, "refused", entries[0].Message)
}
