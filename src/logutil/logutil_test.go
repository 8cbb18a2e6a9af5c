package logutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pypestream-rpa/src/config"
)

func TestSetupConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logsDir := filepath.Join(t.TempDir(), "logs")

	logger, err := setup(config.LoggerConfig{Level: "info", Format: "console"}, logsDir, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("Launching Chromium.")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "Launching Chromium.")
	assert.NotContains(t, out, "hidden")
	_, statErr := os.Stat(logsDir)
	assert.True(t, os.IsNotExist(statErr), "file logging disabled must not create the logs dir")
}

func TestSetupWritesJSONFile(t *testing.T) {
	var buf bytes.Buffer
	logsDir := filepath.Join(t.TempDir(), "logs")

	logger, err := setup(config.LoggerConfig{Level: "debug", EnableFile: true, MaxSize: 1}, logsDir, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("Clicked Engage with us button.", zap.Float64("confidence", 91.5))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(logsDir, logFileName))
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "Clicked Engage with us button.", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "rpa", entry["logger"])
	assert.Equal(t, 91.5, entry["confidence"])
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setup(config.LoggerConfig{Level: "loud"}, t.TempDir(), zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("debug line")
	logger.Info("info line")
	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}
