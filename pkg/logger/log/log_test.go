package log_test

import (
	"context"
	"testing"

	"github.com/ragzy-ai/ragzy-api/pkg/logger"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.L()
	logger.SetDefault(zap.New(core))
	t.Cleanup(func() { logger.SetDefault(prev) })
	return logs
}

func TestWithFields(t *testing.T) {
	logs := observe(t)

	ctx := log.WithFields(context.Background(), "request_id", "req-1")
	inner := log.WithFields(ctx, "workspace_id", "ws-1")
	log.Infow(inner, "workspace loaded", "agents", 2)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "workspace loaded", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "ws-1", fields["workspace_id"])
	assert.EqualValues(t, 2, fields["agents"])

	// fields added downstream are visible through the outer context
	assert.Equal(t, []any{"request_id", "req-1", "workspace_id", "ws-1"}, log.Fields(ctx))
}

func TestLevels(t *testing.T) {
	logs := observe(t)
	ctx := context.Background()

	log.Debugw(ctx, "debug")
	log.Warnw(ctx, "warn", "attempt", 1)
	log.Errorw(ctx, "error", "error", "boom")
	log.Logw(ctx, zapcore.InfoLevel, "info")

	require.Equal(t, 4, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
	assert.Equal(t, zapcore.InfoLevel, logs.All()[3].Level)
}

func TestFieldsWithoutWrap(t *testing.T) {
	assert.Nil(t, log.Fields(context.Background()))
}
