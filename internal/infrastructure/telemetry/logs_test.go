package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerProvider_DisabledBridgeIsIdentity(t *testing.T) {
	ctx := context.Background()
	base := zaptest.NewLogger(t)

	for _, cfg := range []Config{
		{},
		{Enabled: true},
		{ExportLogs: true},
	} {
		lp, err := NewLoggerProvider(ctx, cfg, base)
		require.NoError(t, err)
		assert.False(t, lp.IsEnabled())
		assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
		assert.NoError(t, lp.Shutdown(ctx))
	}
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("session_id", "s-1"))

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "s-1", logs.All()[0].ContextMap()["session_id"])
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}
