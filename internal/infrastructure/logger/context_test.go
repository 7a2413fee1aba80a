package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogger(t *testing.T) {
	ctx := WithContext(context.Background(), zap.NewNop())
	assert.NotNil(t, FromContext(ctx))

	// Missing or mistyped values yield a usable no-op logger
	assert.NotNil(t, FromContext(context.Background()))
	bad := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotNil(t, FromContext(bad))
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, scoped := WithRequestID(context.Background(), zap.New(core), "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))

	scoped.Info("scoped entry")
	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])

	// The scoped logger is retrievable from the returned context
	assert.Same(t, scoped, FromContext(ctx))
}

func TestWithUserID(t *testing.T) {
	ctx, scoped := WithUserID(context.Background(), zap.NewNop(), "customer-789")

	assert.Equal(t, "customer-789", GetUserID(ctx))
	assert.NotNil(t, scoped)
}

func TestContextAccessorsUnset(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, zap.NewNop(), "req-1")
	ctx, _ = WithUserID(ctx, zap.NewNop(), "customer-2")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "customer-2", GetUserID(ctx))

	// A later request ID shadows the earlier one
	ctx, _ = WithRequestID(ctx, zap.NewNop(), "req-9")
	assert.Equal(t, "req-9", GetRequestID(ctx))
}
