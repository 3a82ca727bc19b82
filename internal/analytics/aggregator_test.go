package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func deliver(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	if err := HandleEvent(agg)(context.Background(), []byte("rank"), data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestHandledEventsVisibleInStats(t *testing.T) {
	agg := NewAggregator()

	deliver(t, agg, RankEvent{
		Type:       EventRank,
		Query:      "graph authority",
		Candidates: 5,
		LatencyMs:  12,
		CacheHit:   true,
		Timestamp:  time.Now().UTC(),
	})
	deliver(t, agg, RankEvent{
		Type:              EventRank,
		Query:             "graph authority",
		Candidates:        0,
		LatencyMs:         4,
		DegradedAuthority: true,
		Timestamp:         time.Now().UTC(),
	})
	deliver(t, agg, RefreshEvent{
		Type:      EventRefresh,
		Docs:      100,
		Links:     400,
		Timestamp: time.Now().UTC(),
	})

	stats := agg.Stats()
	if stats.TotalRanks != 2 {
		t.Errorf("TotalRanks = %d, want 2", stats.TotalRanks)
	}
	if stats.TotalRefreshes != 1 {
		t.Errorf("TotalRefreshes = %d, want 1", stats.TotalRefreshes)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("cache hits/misses = %d/%d, want 1/1", stats.CacheHits, stats.CacheMisses)
	}
	if stats.DegradedRanks != 1 {
		t.Errorf("DegradedRanks = %d, want 1", stats.DegradedRanks)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.TopQueries) != 1 || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %+v, want one entry with count 2", stats.TopQueries)
	}
}

func TestStatsLatencyPercentiles(t *testing.T) {
	agg := NewAggregator()
	for i := 1; i <= 100; i++ {
		deliver(t, agg, RankEvent{
			Type:      EventRank,
			Query:     "q",
			LatencyMs: int64(i),
		})
	}

	stats := agg.Stats()
	if stats.P50LatencyMs < 48 || stats.P50LatencyMs > 53 {
		t.Errorf("P50 = %d, want around 50", stats.P50LatencyMs)
	}
	if stats.P99LatencyMs < 97 {
		t.Errorf("P99 = %d, want near 100", stats.P99LatencyMs)
	}
	if stats.AvgLatencyMs != 50.5 {
		t.Errorf("Avg = %v, want 50.5", stats.AvgLatencyMs)
	}
}

func TestMalformedEventIgnored(t *testing.T) {
	agg := NewAggregator()
	if err := HandleEvent(agg)(context.Background(), nil, []byte("{not json")); err != nil {
		t.Fatalf("malformed events must not error the consumer: %v", err)
	}
	if got := agg.Stats().TotalRanks; got != 0 {
		t.Errorf("TotalRanks = %d, want 0", got)
	}
}

func TestTopQueriesDeterministicTieBreak(t *testing.T) {
	agg := NewAggregator()
	for _, q := range []string{"beta", "alpha", "gamma"} {
		deliver(t, agg, RankEvent{Type: EventRank, Query: q, Candidates: 1})
	}

	top := agg.Stats().TopQueries
	if len(top) != 3 {
		t.Fatalf("expected 3 queries, got %d", len(top))
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, qc := range top {
		if qc.Query != want[i] {
			t.Fatalf("tied counts must order by query name, got %+v", top)
		}
	}
}
