package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructuredLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	logger.Info("hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogError(logger, "something failed", errors.New("boom"), slog.String("op", "load"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "something failed", record["msg"])
	assert.Equal(t, "boom", record["error"])
	assert.Equal(t, "load", record["op"])

	// Nil loggers are tolerated.
	LogError(nil, "ignored", errors.New("boom"))
}

func TestLogHTTPRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	LogHTTPRequest(logger, "GET", "/v1/tp/trip", 200, 12.5)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "http_request", record["msg"])
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/v1/tp/trip", record["path"])
	assert.Equal(t, float64(200), record["status"])
}

func TestContextLogger(t *testing.T) {
	logger := NewStructuredLogger(&bytes.Buffer{}, slog.LevelInfo)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	// A bare context yields the process default, never nil.
	assert.NotNil(t, FromContext(context.Background()))
}
