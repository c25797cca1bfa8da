package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ghuser/lostfound/items"

// ItemMetrics holds the counters recorded by the item services.
// A nil *ItemMetrics is valid and records nothing.
type ItemMetrics struct {
	searchFallbacks metric.Int64Counter
	itemsCreated    metric.Int64Counter
	orphanedBlobs   metric.Int64Counter
}

// NewItemMetrics registers the item counters on the global meter provider.
// Call after Setup so the counters reach the Prometheus and OTLP readers.
func NewItemMetrics() (*ItemMetrics, error) {
	meter := otel.Meter(meterName)

	fallbacks, err := meter.Int64Counter("item.search.fallbacks",
		metric.WithDescription("Searches served by a full scan after the status index failed"))
	if err != nil {
		return nil, fmt.Errorf("counter item.search.fallbacks: %w", err)
	}
	created, err := meter.Int64Counter("item.created",
		metric.WithDescription("Items accepted by intake"))
	if err != nil {
		return nil, fmt.Errorf("counter item.created: %w", err)
	}
	orphaned, err := meter.Int64Counter("item.blob.orphaned",
		metric.WithDescription("Images left behind because blob deletion failed"))
	if err != nil {
		return nil, fmt.Errorf("counter item.blob.orphaned: %w", err)
	}

	return &ItemMetrics{
		searchFallbacks: fallbacks,
		itemsCreated:    created,
		orphanedBlobs:   orphaned,
	}, nil
}

// SearchFallback records one index-to-scan fallback.
func (m *ItemMetrics) SearchFallback(ctx context.Context) {
	if m == nil {
		return
	}
	m.searchFallbacks.Add(ctx, 1)
}

// ItemCreated records one accepted report of the given item type.
func (m *ItemMetrics) ItemCreated(ctx context.Context, itemType string) {
	if m == nil {
		return
	}
	m.itemsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("item_type", itemType)))
}

// BlobOrphaned records one image left in the blob store after its record was deleted.
func (m *ItemMetrics) BlobOrphaned(ctx context.Context) {
	if m == nil {
		return
	}
	m.orphanedBlobs.Add(ctx, 1)
}
