package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &ZapLogger{logger: zap.New(core), level: zap.NewAtomicLevel()}

	ctx := WithTraceID(context.Background(), "req-1")
	ctx = WithWorkerID(ctx, 3)
	ctx = WithActionType(ctx, "product_check")
	l.Infof(ctx, "checked %d", 42)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "checked 42", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["trace_id"])
	assert.Equal(t, int64(3), fields["worker_id"])
	assert.Equal(t, "product_check", fields["action_type"])
}

func TestSetLevel(t *testing.T) {
	l, err := NewZapLogger("warn")
	require.NoError(t, err)
	assert.Equal(t, "warn", l.Level())

	l.SetLevel("debug")
	assert.Equal(t, "debug", l.Level())

	l.SetLevel("bogus")
	assert.Equal(t, "info", l.Level())
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
	assert.Equal(t, "abc", TraceID(WithTraceID(context.Background(), "abc")))
}
