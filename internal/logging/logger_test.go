package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.WithModule("test").Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.WithModule("test").Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogLevel("loud"), &buf)

	logger.WithModule("test").Debug().Msg("debug")
	assert.Empty(t, buf.String())
	logger.WithModule("test").Info().Msg("info")
	assert.Contains(t, buf.String(), "info")
}

func TestLogger_WithModule(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(InfoLevel, &buf).WithModule("duplicates").Info().Msg("hello")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "duplicates", entry["module"])
	assert.Equal(t, "hello", entry["message"])
}

func TestLogger_WithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.WithContext(ctx).Info().Msg("traced")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", entry["trace_id"])
	assert.Equal(t, "0102030405060708", entry["span_id"])
}

func TestLogger_LogAnalysis(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.LogAnalysis("abc", 10, 2, 1500*time.Millisecond, nil)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc", entry["analysis_id"])
	assert.Equal(t, float64(1500), entry["duration_ms"])

	buf.Reset()
	logger.LogAnalysis("abc", 10, 0, time.Second, errors.New("boom"))
	entry = decodeLine(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(InfoLevel, &buf).WithFields(map[string]interface{}{
		"module": "cli",
		"total":  12,
	}).Info().Msg("Opened scan database")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "cli", entry["module"])
	assert.Equal(t, float64(12), entry["total"])
}

func TestInitGlobalLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitGlobalLogger(InfoLevel, "json", &buf)

	Infof("files=%d", 3)
	entry := decodeLine(t, &buf)
	assert.Equal(t, "files=3", entry["message"])
}
