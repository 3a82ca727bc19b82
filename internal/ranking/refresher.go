package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Algolizen-Inc/LinkRanker/internal/analytics"
	"github.com/Algolizen-Inc/LinkRanker/internal/authority"
	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/pkg/kafka"
	"github.com/Algolizen-Inc/LinkRanker/pkg/metrics"
	"github.com/Algolizen-Inc/LinkRanker/pkg/resilience"
)

// IndexUpdatedEvent is published by the indexing collaborator when a new
// consistent snapshot is available in its tables.
type IndexUpdatedEvent struct {
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Refresher owns the snapshot lifecycle: it loads a fresh snapshot from the
// index source, recomputes authority scores, installs both atomically, and
// invalidates result caches. It runs at startup and on index-updated
// notifications — the only paths that trigger authority recomputation.
type Refresher struct {
	source       index.Source
	orchestrator *Orchestrator
	store        *authority.Store
	invalidate   func(ctx context.Context) error
	collector    *analytics.Collector
	timeout      time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewRefresher(
	source index.Source,
	orchestrator *Orchestrator,
	store *authority.Store,
	invalidate func(ctx context.Context) error,
	collector *analytics.Collector,
	timeout time.Duration,
	m *metrics.Metrics,
) *Refresher {
	return &Refresher{
		source:       source,
		orchestrator: orchestrator,
		store:        store,
		invalidate:   invalidate,
		collector:    collector,
		timeout:      timeout,
		metrics:      m,
		logger:       slog.Default().With("component", "snapshot-refresher"),
	}
}

// Refresh performs one full reload cycle. The new authority map is built
// before either the snapshot or the scores become visible to ranking calls.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	var snapshot *index.Snapshot
	err := resilience.WithTimeout(ctx, r.timeout, "snapshot-refresh", func(ctx context.Context) error {
		loaded, err := r.source.Load(ctx)
		if err != nil {
			return err
		}
		snapshot = loaded
		return nil
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.SnapshotReloadsTotal.WithLabelValues("failed").Inc()
		}
		return fmt.Errorf("refreshing snapshot: %w", err)
	}

	r.store.Refresh(snapshot)
	r.orchestrator.SetSnapshot(snapshot)

	if r.invalidate != nil {
		if err := r.invalidate(ctx); err != nil {
			// Stale cached rankings expire by TTL anyway.
			r.logger.Warn("cache invalidation after refresh failed", "error", err)
		}
	}
	if r.metrics != nil {
		r.metrics.SnapshotReloadsTotal.WithLabelValues("ok").Inc()
	}
	if r.collector != nil {
		r.collector.Track(analytics.RefreshEvent{
			Type:      analytics.EventRefresh,
			Docs:      snapshot.TotalDocs(),
			Links:     len(snapshot.Links()),
			Degraded:  len(r.store.Scores()) == 0,
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
		})
	}
	r.logger.Info("snapshot refreshed",
		"docs", snapshot.TotalDocs(),
		"links", len(snapshot.Links()),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// HandleIndexUpdated returns a Kafka handler that triggers a refresh for
// each index-updated notification.
func (r *Refresher) HandleIndexUpdated() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[IndexUpdatedEvent](value)
		if err != nil {
			r.logger.Error("failed to decode index-updated event", "error", err)
			return nil
		}
		r.logger.Info("index-updated notification received", "version", event.Version)
		if err := r.Refresh(ctx); err != nil {
			r.logger.Error("refresh after index update failed", "error", err)
		}
		return nil
	}
}
