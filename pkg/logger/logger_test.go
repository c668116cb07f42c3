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

func TestContextWithCorrelationID(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "test-id")
	assert.Equal(t, "test-id", CorrelationIDFromContext(ctx))
}

func TestCorrelationIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestWithContext_AddsCorrelationAndRideFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := ContextWithCorrelationID(context.Background(), "context-id")
	ctx = ContextWithRideID(ctx, "ride-42")

	InfoContext(ctx, "fare locked")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "context-id", fields["correlation_id"])
	assert.Equal(t, "ride-42", fields["ride_id"])
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	err := Init(Options{Environment: "development", Level: "loud"})
	assert.Error(t, err)
}

func TestInit_AttachesServiceName(t *testing.T) {
	restore := Replace(nil)
	defer restore()

	require.NoError(t, Init(Options{Environment: "production", Service: "pricing", Level: "warn"}))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))
}
