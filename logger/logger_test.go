package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")

	config := LoadConfig()

	assert.Equal(t, slog.LevelDebug, config.Level)
	assert.Equal(t, "text", config.Format)
}

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Writer = &buf

	log := NewLogger(config)
	log.Info("handle closed", HandleID("abc"), Operation("checkin"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "handle closed", record["msg"])
	assert.Equal(t, "abc", record["handle_id"])
	assert.Equal(t, "checkin", record["operation"])
}
