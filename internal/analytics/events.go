package analytics

import "time"

type EventType string

const (
	EventRank       EventType = "rank"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
	EventRefresh    EventType = "authority_refresh"
)

// RankEvent records one ranking call for offline analysis.
type RankEvent struct {
	Type              EventType `json:"type"`
	Query             string    `json:"query"`
	Terms             int       `json:"terms"`
	Candidates        int       `json:"candidates"`
	Returned          int       `json:"returned"`
	LatencyMs         int64     `json:"latency_ms"`
	CacheHit          bool      `json:"cache_hit"`
	DegradedAuthority bool      `json:"degraded_authority"`
	ContentWeight     float64   `json:"content_weight"`
	AuthorityWeight   float64   `json:"authority_weight"`
	Timestamp         time.Time `json:"timestamp"`
	RequestID         string    `json:"request_id"`
}

// RefreshEvent records a snapshot reload and authority recomputation.
type RefreshEvent struct {
	Type      EventType `json:"type"`
	Docs      int       `json:"docs"`
	Links     int       `json:"links"`
	Degraded  bool      `json:"degraded"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}
