// Package ranking combines textual relevance and graph authority into one
// deterministic ordering over the candidate document universe.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Algolizen-Inc/LinkRanker/internal/authority"
	"github.com/Algolizen-Inc/LinkRanker/internal/expand"
	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/internal/relevance"
	apperrors "github.com/Algolizen-Inc/LinkRanker/pkg/errors"
	"github.com/Algolizen-Inc/LinkRanker/pkg/metrics"
)

// RankedDoc is one entry of a ranking result.
type RankedDoc struct {
	DocID int64   `json:"doc_id"`
	Score float64 `json:"score"`
}

// Result is the full ordered outcome of one ranking call.
type Result struct {
	Query             string      `json:"query"`
	Terms             []string    `json:"terms"`
	Candidates        int         `json:"candidates"`
	DegradedAuthority bool        `json:"degraded_authority"`
	Results           []RankedDoc `json:"results"`
}

// Orchestrator fans one scoring task per candidate document across a
// bounded worker pool and merges relevance with authority. The snapshot is
// replaced atomically on index reloads; a ranking call in flight keeps
// scoring against the snapshot it started with.
type Orchestrator struct {
	snapshot  atomic.Pointer[index.Snapshot]
	authority *authority.Store
	expander  expand.Expander
	params    relevance.Params
	workers   int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New wires the orchestrator with its collaborators. The expander is
// injected here; the orchestrator never loads NLP resources itself.
// workers <= 0 selects GOMAXPROCS.
func New(store *authority.Store, expander expand.Expander, params relevance.Params, workers int, m *metrics.Metrics) *Orchestrator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Orchestrator{
		authority: store,
		expander:  expander,
		params:    params,
		workers:   workers,
		metrics:   m,
		logger:    slog.Default().With("component", "ranking-orchestrator"),
	}
}

// SetSnapshot installs a new index snapshot. Safe to call concurrently
// with Rank.
func (o *Orchestrator) SetSnapshot(snapshot *index.Snapshot) {
	o.snapshot.Store(snapshot)
	if o.metrics != nil && snapshot != nil {
		o.metrics.SnapshotDocCount.Set(float64(snapshot.TotalDocs()))
	}
}

// Snapshot returns the currently installed snapshot, or nil.
func (o *Orchestrator) Snapshot() *index.Snapshot {
	return o.snapshot.Load()
}

// Rank scores every document in the candidate universe and returns the
// full ordering: combined score descending, ties broken by ascending
// document ID. contentWeight and authorityWeight should sum to 1; the
// engine documents but does not enforce this.
//
// A degraded authority vector (empty map) contributes 0 for every
// document. A scoring task that panics contributes zero relevance and the
// run continues.
func (o *Orchestrator) Rank(ctx context.Context, query string, contentWeight, authorityWeight float64) (*Result, error) {
	snapshot := o.snapshot.Load()
	if snapshot == nil {
		return nil, fmt.Errorf("rank %q: %w", query, apperrors.ErrSnapshotNotLoaded)
	}

	terms, err := o.expander.ExpandQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("expanding query %q: %w", query, err)
	}

	authorityScores := o.authority.Scores()
	scorer := relevance.NewScorer(snapshot, o.params)
	docIDs := snapshot.DocIDs()
	scores := make([]float64, len(docIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, docID := range docIDs {
		i, docID := i, docID
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			rel := o.scoreDoc(scorer, terms, docID)
			scores[i] = contentWeight*rel + authorityWeight*authorityScores[docID]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking %q: %w", query, err)
	}

	ranked := make([]RankedDoc, len(docIDs))
	for i, docID := range docIDs {
		ranked[i] = RankedDoc{DocID: docID, Score: scores[i]}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].DocID < ranked[j].DocID
	})

	if o.metrics != nil {
		o.metrics.RankResultsCount.Observe(float64(len(ranked)))
	}
	o.logger.Debug("rank completed",
		"query", query,
		"terms", len(terms),
		"candidates", len(ranked),
		"degraded_authority", len(authorityScores) == 0,
	)
	return &Result{
		Query:             query,
		Terms:             terms,
		Candidates:        len(ranked),
		DegradedAuthority: len(authorityScores) == 0,
		Results:           ranked,
	}, nil
}

// scoreDoc isolates one document's relevance computation so a fault in
// malformed term statistics cannot abort the whole ranking run.
func (o *Orchestrator) scoreDoc(scorer *relevance.Scorer, terms []string, docID int64) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("scoring task failed, contributing zero relevance",
				"doc_id", docID,
				"panic", r,
			)
			if o.metrics != nil {
				o.metrics.ScoringTaskFailures.Inc()
			}
			score = 0
		}
	}()
	return scorer.Score(terms, docID)
}
