//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zarr-catalog-etl/internal/adapter/kafka"
	"github.com/couchcryptid/zarr-catalog-etl/internal/config"
	"github.com/couchcryptid/zarr-catalog-etl/internal/domain"
)

const testTopic = "catalog-published-test"

// TestCatalogEventRoundTrip publishes a CatalogPublished event and reads it back.
func TestCatalogEventRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, slog.Default())
	defer writer.Close()

	event := domain.CatalogPublished{
		RunID:       "run-42",
		Catalog:     "era-hdp-collection",
		ManifestURI: "s3://wecc-historical-wx/4_merge_wx/era-hdp-collection.json",
		CatalogFile: "s3://wecc-historical-wx/4_merge_wx/era-hdp-collection.csv",
		Records:     12,
		Invalid:     1,
		PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, writer.NotifyPublished(ctx, event))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer reader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read catalog event")

	assert.Equal(t, "era-hdp-collection", string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "run-42", headers["run_id"])
	assert.Equal(t, "2025-06-01T12:00:00Z", headers["published_at"])

	var got domain.CatalogPublished
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event, got)
}
