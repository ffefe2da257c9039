package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(f func(*bytes.Buffer) Formatter) (*slog.Logger, *Handler, *bytes.Buffer) {
	var buf bytes.Buffer
	h := NewHandler()
	h.SetStream(&buf)
	h.SetFormatter(f(&buf))
	return slog.New(h), h, &buf
}

func pretty(buf *bytes.Buffer) Formatter { return NewPrettyFormatter(buf) }

func TestPrettyFormat(t *testing.T) {
	logger, _, buf := newTestLogger(pretty)

	logger.Info("session opened", "session", "abc", "script", "/tmp/a b.py")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "INFO"), line)
	assert.Contains(t, line, "session opened")
	assert.Contains(t, line, "session=abc")
	assert.Contains(t, line, `script="/tmp/a b.py"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestLevelFiltering(t *testing.T) {
	logger, h, buf := newTestLogger(pretty)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	h.SetLevel(slog.LevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	h.SetLevel(slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "kept")
}

func TestDerivedLoggersFollowReconfiguration(t *testing.T) {
	logger, h, buf := newTestLogger(pretty)
	derived := logger.With("component", "server")

	h.SetLevel(slog.LevelError)
	derived.Warn("dropped")
	assert.Empty(t, buf.String())

	derived.Error("failed")
	assert.Contains(t, buf.String(), "component=server")
}

func TestWithGroupPrefixesKeys(t *testing.T) {
	logger, _, buf := newTestLogger(pretty)

	logger.WithGroup("job").Info("done", "exit", 3)
	assert.Contains(t, buf.String(), "job.exit=3")
}

func TestJSONFormat(t *testing.T) {
	logger, _, buf := newTestLogger(func(*bytes.Buffer) Formatter { return JSONFormatter{} })

	logger.With("session", "s1").Error("read failed", "error", errors.New("boom"), slog.Group("req", "lang", "py"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "read failed", got["msg"])
	assert.Equal(t, "s1", got["session"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, "py", got["req.lang"])
}
