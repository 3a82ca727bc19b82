package authority

import (
	"log/slog"
	"sync/atomic"

	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/pkg/metrics"
)

// Scores maps document IDs to normalized authority weights. A nil map means
// the store has never been refreshed; an empty non-nil map means the last
// refresh found a degenerate graph and ranking should treat authority as 0
// everywhere.
type Scores map[int64]float64

// Store owns the cached authority vector. Refresh builds a complete new
// score map and swaps it in atomically, so concurrent ranking calls never
// observe a partially updated mapping. Recomputation happens only through
// Refresh — at startup and on index-change notifications — never implicitly
// during a ranking call.
type Store struct {
	params  IterationParams
	metrics *metrics.Metrics
	logger  *slog.Logger
	current atomic.Pointer[Scores]
}

func NewStore(params IterationParams, m *metrics.Metrics) *Store {
	if params.MaxIterations <= 0 {
		params = DefaultIterationParams()
	}
	return &Store{
		params:  params,
		metrics: m,
		logger:  slog.Default().With("component", "authority-store"),
	}
}

// Scores returns the current authority map. Nil until the first Refresh.
func (s *Store) Scores() Scores {
	p := s.current.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Initialized reports whether Refresh has completed at least once,
// distinguishing "not yet computed" from "computed empty".
func (s *Store) Initialized() bool {
	return s.current.Load() != nil
}

// Refresh recomputes authority scores for the given snapshot and installs
// the result. A degenerate graph (no documents or no reference edges) or a
// solver failure installs an empty map and logs the degraded condition;
// neither aborts the caller.
func (s *Store) Refresh(snapshot *index.Snapshot) {
	scores := s.compute(snapshot)
	s.current.Store(&scores)
	if s.metrics != nil {
		s.metrics.AuthorityDocsScored.Set(float64(len(scores)))
	}
}

func (s *Store) compute(snapshot *index.Snapshot) Scores {
	g := BuildGraph(snapshot)
	if g.NumNodes() == 0 || g.NumEdges() == 0 {
		s.logger.Warn("reference graph is degenerate, authority degraded to zero",
			"nodes", g.NumNodes(),
			"edges", g.NumEdges(),
		)
		if s.metrics != nil {
			s.metrics.AuthorityRefreshTotal.WithLabelValues("degraded").Inc()
		}
		return Scores{}
	}

	vector, converged := powerIterate(g, s.params)
	if !converged {
		s.logger.Error("authority computation failed to converge, degrading to zero",
			"nodes", g.NumNodes(),
			"edges", g.NumEdges(),
			"max_iterations", s.params.MaxIterations,
		)
		if s.metrics != nil {
			s.metrics.AuthorityRefreshTotal.WithLabelValues("failed").Inc()
		}
		return Scores{}
	}

	scores := make(Scores, g.NumNodes())
	for i, id := range g.nodes {
		scores[id] = vector[i]
	}
	s.logger.Info("authority scores refreshed",
		"nodes", g.NumNodes(),
		"edges", g.NumEdges(),
	)
	if s.metrics != nil {
		s.metrics.AuthorityRefreshTotal.WithLabelValues("ok").Inc()
	}
	return scores
}
