package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "production", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.Info("hello")
	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLoggerWithOutput("verbose", "development", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestRefreshLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	refreshLogger := NewRefreshLogger(log)

	refreshLogger.LogRefreshCompleted("refresh_1", 120, 40, 12, 9, 2, true, 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "refresh", logEntry["component"])
	assert.Equal(t, "refresh_1", logEntry["refresh_id"])
	assert.Equal(t, float64(40), logEntry["horses"])
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
	assert.Equal(t, true, logEntry["from_cache"])
}

func TestRefreshLoggerFailed(t *testing.T) {
	log, buf := setupTestLogger()
	refreshLogger := NewRefreshLogger(log)

	refreshLogger.LogRefreshFailed("refresh_2", errors.New("source unavailable"), "empty", time.Second)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "source unavailable", logEntry["error"])
	assert.Equal(t, "empty", logEntry["fallback"])
}

func TestRefreshLoggerCacheInvalidated(t *testing.T) {
	log, buf := setupTestLogger()
	NewRefreshLogger(log).LogCacheInvalidated()

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "cache_invalidated", logEntry["event_type"])
}
