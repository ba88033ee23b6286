package observability_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/msk-agent-bridge/internal/observability"
)

func TestContextWithLogger_RoundTrip(t *testing.T) {
	t.Parallel()

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := observability.ContextWithLogger(context.Background(), lg)
	assert.Same(t, lg, observability.LoggerFromContext(ctx))
}

func TestLoggerFromContext_Fallbacks(t *testing.T) {
	t.Parallel()

	assert.Same(t, slog.Default(), observability.LoggerFromContext(context.Background()))
	//nolint:staticcheck // nil context is the degenerate case under test
	assert.Same(t, slog.Default(), observability.LoggerFromContext(nil))
}

func TestContextWithLogger_NilLoggerIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, ctx, observability.ContextWithLogger(ctx, nil))
}
