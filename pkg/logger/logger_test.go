package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Error("failed to create order", errors.New("boom"), "user_id", "u-1")
	Info("order created", "order_id", "o-1", "total", "54.00")
	Warn("dangling")

	entries := logs.All()
	require.Len(t, entries, 3)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "u-1", ctx["user_id"])

	assert.Equal(t, "54.00", entries[1].ContextMap()["total"])
	assert.Equal(t, "dangling", entries[2].Message)
}
