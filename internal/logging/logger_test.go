package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "json", &buf)
	require.NoError(t, err)

	logger.Info("scan complete", zap.Int("items", 3))
	logger.Debug("hidden")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scan complete", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 3, entry["items"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debug("skipped file", zap.String("file", "a.go"))

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "skipped file")
	assert.Contains(t, out, `"file": "a.go"`)
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"unknown level", "loud", "json"},
		{"unknown format", "info", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithWriter(tt.level, tt.format, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}
