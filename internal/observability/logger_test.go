package observability

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Same(t, Logger(), LoggerFromContext(ctx))

	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
	assert.NotSame(t, Logger(), LoggerFromContext(ctx))
}

func TestInitWritesRotatedFile(t *testing.T) {
	prev := logger
	t.Cleanup(func() {
		logger = prev
		slog.SetDefault(prev)
	})

	dir := t.TempDir()
	closer, err := Init(LogOptions{Dir: dir, Level: "debug"})
	require.NoError(t, err)

	Logger().Debug("hello from test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "agribharat.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
