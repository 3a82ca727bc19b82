package ranking

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/Algolizen-Inc/LinkRanker/internal/authority"
	"github.com/Algolizen-Inc/LinkRanker/internal/expand"
	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/internal/relevance"
)

// staticExpander returns a fixed term sequence regardless of the query.
type staticExpander struct {
	terms []string
}

func (s staticExpander) ExpandQuery(context.Context, string) ([]string, error) {
	return s.terms, nil
}

func testSnapshot() *index.Snapshot {
	b := index.NewBuilder()
	b.AddTerm("cat", 1, 2, 10)
	b.AddTerm("dog", 2, 1, 10)
	b.AddTerm("bird", 3, 3, 10)
	b.AddLink(1, 2)
	b.AddLink(2, 3)
	b.AddLink(3, 1)
	return b.Snapshot()
}

func newTestOrchestrator(snap *index.Snapshot, terms []string) (*Orchestrator, *authority.Store) {
	store := authority.NewStore(authority.DefaultIterationParams(), nil)
	store.Refresh(snap)
	o := New(store, staticExpander{terms: terms}, relevance.DefaultParams(), 4, nil)
	o.SetSnapshot(snap)
	return o, store
}

func TestRankCombinedScore(t *testing.T) {
	snap := testSnapshot()
	o, store := newTestOrchestrator(snap, []string{"cat"})

	result, err := o.Rank(context.Background(), "cat", 0.7, 0.3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected full universe of 3 docs, got %d", len(result.Results))
	}

	scorer := relevance.NewScorer(snap, relevance.DefaultParams())
	auth := store.Scores()
	for _, rd := range result.Results {
		want := 0.7*scorer.Score([]string{"cat"}, rd.DocID) + 0.3*auth[rd.DocID]
		if math.Abs(rd.Score-want) > 1e-12 {
			t.Errorf("doc %d combined score %v, want %v", rd.DocID, rd.Score, want)
		}
	}
	if result.Results[0].DocID != 1 {
		t.Errorf("doc 1 matches the query and should rank first, got doc %d", result.Results[0].DocID)
	}
}

func TestRankDeterministic(t *testing.T) {
	snap := testSnapshot()
	o, _ := newTestOrchestrator(snap, []string{"cat", "dog"})

	first, err := o.Rank(context.Background(), "q", 0.7, 0.3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := o.Rank(context.Background(), "q", 0.7, 0.3)
		if err != nil {
			t.Fatalf("Rank: %v", err)
		}
		if !reflect.DeepEqual(first.Results, again.Results) {
			t.Fatalf("run %d produced a different ordering:\n%v\nvs\n%v", i, first.Results, again.Results)
		}
	}
}

func TestRankDegradedAuthority(t *testing.T) {
	// Universe without links: the graph is degenerate and authority must
	// contribute 0 everywhere, while ranking still returns a full order.
	b := index.NewBuilder()
	b.AddTerm("cat", 1, 2, 10)
	b.AddTerm("dog", 2, 1, 10)
	snap := b.Snapshot()

	o, _ := newTestOrchestrator(snap, []string{"cat"})
	result, err := o.Rank(context.Background(), "cat", 0.7, 0.3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if !result.DegradedAuthority {
		t.Error("expected degraded authority flag")
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result.Results))
	}
	scorer := relevance.NewScorer(snap, relevance.DefaultParams())
	for _, rd := range result.Results {
		want := 0.7 * scorer.Score([]string{"cat"}, rd.DocID)
		if math.Abs(rd.Score-want) > 1e-12 {
			t.Errorf("doc %d score %v, want pure relevance %v", rd.DocID, rd.Score, want)
		}
	}
}

func TestRankEmptyQueryFallsBackToAuthority(t *testing.T) {
	b := index.NewBuilder()
	b.AddTerm("word", 1, 1, 10)
	b.AddTerm("word", 2, 1, 10)
	b.AddTerm("word", 3, 1, 10)
	// Doc 3 is cited twice, doc 2 once, doc 1 never.
	b.AddLink(1, 3)
	b.AddLink(2, 3)
	b.AddLink(3, 2)
	snap := b.Snapshot()

	o, _ := newTestOrchestrator(snap, nil)
	result, err := o.Rank(context.Background(), "", 0.7, 0.3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if got := result.Results[0].DocID; got != 3 {
		t.Errorf("most-cited doc 3 should rank first on empty query, got %d", got)
	}
	if got := result.Results[2].DocID; got != 1 {
		t.Errorf("uncited doc 1 should rank last, got %d", got)
	}
}

func TestRankTieBreakAscendingDocID(t *testing.T) {
	b := index.NewBuilder()
	for _, id := range []int64{5, 3, 9, 1} {
		b.AddTerm("word", id, 1, 10)
	}
	snap := b.Snapshot()

	o, _ := newTestOrchestrator(snap, nil)
	result, err := o.Rank(context.Background(), "", 0.5, 0.5)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	want := []int64{1, 3, 5, 9}
	for i, rd := range result.Results {
		if rd.DocID != want[i] {
			t.Fatalf("tied scores must order by ascending doc ID, got %v", result.Results)
		}
	}
}

func TestRankWithoutSnapshot(t *testing.T) {
	store := authority.NewStore(authority.DefaultIterationParams(), nil)
	o := New(store, staticExpander{}, relevance.DefaultParams(), 2, nil)
	if _, err := o.Rank(context.Background(), "cat", 0.7, 0.3); err == nil {
		t.Fatal("expected error when no snapshot is installed")
	}
}

func TestRankUninitializedAuthorityTreatedAsZero(t *testing.T) {
	snap := testSnapshot()
	store := authority.NewStore(authority.DefaultIterationParams(), nil)
	o := New(store, staticExpander{terms: []string{"cat"}}, relevance.DefaultParams(), 2, nil)
	o.SetSnapshot(snap)

	result, err := o.Rank(context.Background(), "cat", 0.7, 0.3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	scorer := relevance.NewScorer(snap, relevance.DefaultParams())
	for _, rd := range result.Results {
		want := 0.7 * scorer.Score([]string{"cat"}, rd.DocID)
		if math.Abs(rd.Score-want) > 1e-12 {
			t.Errorf("doc %d score %v, want %v with authority 0", rd.DocID, rd.Score, want)
		}
	}
}

func TestRankCancelled(t *testing.T) {
	snap := testSnapshot()
	o, _ := newTestOrchestrator(snap, []string{"cat"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Rank(ctx, "cat", 0.7, 0.3); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRankUsesRealExpander(t *testing.T) {
	snap := testSnapshot()
	store := authority.NewStore(authority.DefaultIterationParams(), nil)
	store.Refresh(snap)
	expander := expand.NewSynonymExpander(map[string][]string{"cat": {"dog"}})
	o := New(store, expander, relevance.DefaultParams(), 2, nil)
	o.SetSnapshot(snap)

	result, err := o.Rank(context.Background(), "cat", 1.0, 0.0)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	// Synonym expansion pulls in "dog", so doc 2 scores above zero too.
	var doc2 float64
	for _, rd := range result.Results {
		if rd.DocID == 2 {
			doc2 = rd.Score
		}
	}
	if doc2 <= 0 {
		t.Errorf("synonym-expanded query should give doc 2 a positive score, got %v", doc2)
	}
}
