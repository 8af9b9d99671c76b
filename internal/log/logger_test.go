package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithJobAddsField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "json")
	defer SetOutput(bytes.NewBuffer(nil), "text")

	WithJob("build").Info("hello")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "build", out["job"])
	assert.Equal(t, "hello", out["msg"])
}

func TestAdjustClampsLevel(t *testing.T) {
	Setup("INFO", "text")
	Adjust(-10)
	assert.Equal(t, slog.LevelDebug, level.Level())
	Adjust(10)
	assert.Equal(t, slog.LevelError, level.Level())
	Adjust(-1)
	assert.Equal(t, slog.LevelWarn, level.Level())
}

func TestParseLevelFallback(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
}
