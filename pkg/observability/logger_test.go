package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, FormatJSON, &buf)

	t.Run("debug not logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		assert.Zero(t, buf.Len())
	})

	t.Run("info logged as json", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "info message", entry["msg"])
	})

	t.Run("warn and error logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Warn("warn message")
		assert.NotZero(t, buf.Len())

		buf.Reset()
		logger.Error("error message")
		assert.NotZero(t, buf.Len())
	})
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, "yaml", &buf)

	_, ok := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok, "unknown formats fall back to text")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{" warning ", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.name))
		})
	}
}

func TestLogLevel_UnmarshalText(t *testing.T) {
	var level LogLevel
	require.NoError(t, level.UnmarshalText([]byte("warn")))
	assert.Equal(t, WarnLevel, level)
	assert.Equal(t, "WARN", level.String())

	assert.Error(t, level.UnmarshalText([]byte("loud")))
	assert.Equal(t, WarnLevel, level, "failed parse leaves the level alone")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, FormatJSON, &buf)

	t.Run("request id and logger from context", func(t *testing.T) {
		ctx := WithLogger(WithRequestID(context.Background(), "req-123"), logger)
		assert.Equal(t, "req-123", GetRequestID(ctx))

		entry := FromContext(ctx)
		assert.Equal(t, "req-123", entry.Data["request_id"])
		assert.Same(t, logger, entry.Logger)
		assert.NotContains(t, entry.Data, "trace_id")
	})

	t.Run("falls back to the standard logger", func(t *testing.T) {
		entry := FromContext(context.Background())
		assert.Same(t, logrus.StandardLogger(), entry.Logger)
		assert.Empty(t, entry.Data)
	})

	t.Run("adds trace ids of a recording span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer tp.Shutdown(context.Background())

		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		entry := FromContext(WithLogger(ctx, logger))
		assert.Equal(t, span.SpanContext().TraceID().String(), entry.Data["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), entry.Data["span_id"])
	})
}
