package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/bonuscli/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logger.ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Writer: &buf, Format: logger.FormatJSON, Level: "info"})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("imported bonus offers", "count", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "imported bonus offers", entry["msg"])
	assert.EqualValues(t, 3, entry["count"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Writer: &buf, Level: "debug"})
	require.NoError(t, err)

	l.Debug("parsed bonus offers", "offers", 2)
	assert.Contains(t, buf.String(), "msg=\"parsed bonus offers\"")
	assert.Contains(t, buf.String(), "offers=2")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := logger.New(logger.Config{Format: "xml"})
	assert.Error(t, err)
}
