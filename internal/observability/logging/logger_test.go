package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNewWritesJSONToRotatingFile(t *testing.T) {
	dir := t.TempDir()
	logger, sync := New(Options{Service: "api", Level: "info", Dir: dir})

	logger.Info("document_routed", "domain", "IT", "run_id", "abc")
	logger.Debug("hidden_at_info")
	sync()

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "document_routed", entry["msg"])
	assert.Equal(t, "IT", entry["domain"])
	assert.Equal(t, "api", entry["service"])
}

func TestNewDebugLowersLevel(t *testing.T) {
	dir := t.TempDir()
	logger, sync := New(Options{Level: "error", Dir: dir, Debug: true})

	logger.Debug("debug_visible")
	sync()

	data, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug_visible")
}
