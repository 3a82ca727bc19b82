// Package handler exposes the ranking engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Algolizen-Inc/LinkRanker/internal/analytics"
	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/internal/ranking"
	"github.com/Algolizen-Inc/LinkRanker/internal/ranking/cache"
	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	apperrors "github.com/Algolizen-Inc/LinkRanker/pkg/errors"
	"github.com/Algolizen-Inc/LinkRanker/pkg/logger"
	"github.com/Algolizen-Inc/LinkRanker/pkg/metrics"
	"github.com/Algolizen-Inc/LinkRanker/pkg/tracing"
)

// Ranker is the slice of the orchestrator the HTTP layer needs.
type Ranker interface {
	Rank(ctx context.Context, query string, contentWeight, authorityWeight float64) (*ranking.Result, error)
}

// RankedDocView is a result entry optionally enriched with stored document
// fields for display.
type RankedDocView struct {
	DocID int64   `json:"doc_id"`
	Score float64 `json:"score"`
	URL   string  `json:"url,omitempty"`
	Title string  `json:"title,omitempty"`
}

// RankResponse is the HTTP representation of a ranking result.
type RankResponse struct {
	Query             string          `json:"query"`
	Candidates        int             `json:"candidates"`
	Returned          int             `json:"returned"`
	DegradedAuthority bool            `json:"degraded_authority"`
	CacheHit          bool            `json:"cache_hit"`
	Results           []RankedDocView `json:"results"`
}

type Handler struct {
	ranker    Ranker
	cache     *cache.ResultCache
	collector *analytics.Collector
	source    index.Source
	refresh   func(ctx context.Context) error
	cfg       config.RankingConfig
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(
	ranker Ranker,
	resultCache *cache.ResultCache,
	collector *analytics.Collector,
	source index.Source,
	refresh func(ctx context.Context) error,
	cfg config.RankingConfig,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		ranker:    ranker,
		cache:     resultCache,
		collector: collector,
		source:    source,
		refresh:   refresh,
		cfg:       cfg,
		metrics:   m,
		logger:    slog.Default().With("component", "rank-handler"),
	}
}

// Rank handles GET /api/v1/rank?q=...&limit=...&content_weight=...&authority_weight=...&include_docs=true.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		if h.metrics != nil {
			h.metrics.RankRequestsTotal.WithLabelValues("empty_query").Inc()
		}
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	// Without an explicit limit the full ordering is returned untruncated.
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if h.cfg.MaxResults > 0 && parsed > h.cfg.MaxResults {
			parsed = h.cfg.MaxResults
		}
		limit = parsed
	}

	contentWeight, authorityWeight, ok := h.parseWeights(w, r)
	if !ok {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "rank", logger.RequestIDFromContext(ctx))
	span.SetAttr("query", query)

	var result *ranking.Result
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, contentWeight, authorityWeight, func() (*ranking.Result, error) {
			return h.ranker.Rank(ctx, query, contentWeight, authorityWeight)
		})
	} else {
		result, err = h.ranker.Rank(ctx, query, contentWeight, authorityWeight)
	}
	span.End()

	latency := time.Since(start)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RankRequestsTotal.WithLabelValues("error").Inc()
		}
		log.Error("rank failed", "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "ranking failed")
		return
	}
	if h.metrics != nil {
		h.metrics.RankRequestsTotal.WithLabelValues("ok").Inc()
		status := "miss"
		if cacheHit {
			status = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		h.metrics.RankLatency.WithLabelValues(status).Observe(latency.Seconds())
	}

	ranked := result.Results
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	includeDocs := r.URL.Query().Get("include_docs") == "true"
	views := h.buildViews(ctx, ranked, includeDocs)

	if h.collector != nil {
		h.collector.Track(analytics.RankEvent{
			Type:              analytics.EventRank,
			Query:             query,
			Terms:             len(result.Terms),
			Candidates:        result.Candidates,
			Returned:          len(views),
			LatencyMs:         latency.Milliseconds(),
			CacheHit:          cacheHit,
			DegradedAuthority: result.DegradedAuthority,
			ContentWeight:     contentWeight,
			AuthorityWeight:   authorityWeight,
			Timestamp:         time.Now().UTC(),
			RequestID:         logger.RequestIDFromContext(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, &RankResponse{
		Query:             query,
		Candidates:        result.Candidates,
		Returned:          len(views),
		DegradedAuthority: result.DegradedAuthority,
		CacheHit:          cacheHit,
		Results:           views,
	})
}

// Refresh handles POST /api/v1/refresh, reloading the index snapshot and
// recomputing authority scores on demand.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresh == nil {
		h.writeError(w, http.StatusNotImplemented, "refresh not configured")
		return
	}
	if err := h.refresh(r.Context()); err != nil {
		h.logger.Error("manual refresh failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "refresh failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusNotFound, "cache not configured")
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]int64{"hits": hits, "misses": misses})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusNotFound, "cache not configured")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) parseWeights(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	contentWeight := h.cfg.ContentWeight
	authorityWeight := h.cfg.AuthorityWeight
	if v := r.URL.Query().Get("content_weight"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "content_weight must be a non-negative number")
			return 0, 0, false
		}
		contentWeight = parsed
	}
	if v := r.URL.Query().Get("authority_weight"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "authority_weight must be a non-negative number")
			return 0, 0, false
		}
		authorityWeight = parsed
	}
	// Weights that do not sum to 1 are accepted; the combined score is then
	// outside the usual convex blend and callers own the interpretation.
	return contentWeight, authorityWeight, true
}

func (h *Handler) buildViews(ctx context.Context, ranked []ranking.RankedDoc, includeDocs bool) []RankedDocView {
	views := make([]RankedDocView, 0, len(ranked))
	for _, rd := range ranked {
		view := RankedDocView{DocID: rd.DocID, Score: rd.Score}
		if includeDocs && h.source != nil {
			doc, err := h.source.GetDocumentByID(ctx, rd.DocID)
			if err != nil {
				h.logger.Warn("document lookup failed", "doc_id", rd.DocID, "error", err)
			} else {
				view.URL = doc.URL
				view.Title = doc.Title
			}
		}
		views = append(views, view)
	}
	return views
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
