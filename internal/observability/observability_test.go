package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zarr-catalog-etl/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "json"})
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.Same(t, logger, slog.Default())
}

func TestNewLogger_DebugText(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	_, isText := logger.Handler().(*slog.TextHandler)
	assert.True(t, isText)
}

func TestMetrics_Register(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m.AssetsCrawled))
	require.NoError(t, reg.Register(m.ManifestPatches))

	m.AssetsCrawled.Add(3)
	m.ManifestPatches.WithLabelValues("success").Inc()

	assert.InDelta(t, 3, testutil.ToFloat64(m.AssetsCrawled), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ManifestPatches.WithLabelValues("success")), 0)
}
