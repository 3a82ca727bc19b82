package authority

import (
	"math"
	"testing"

	"github.com/Algolizen-Inc/LinkRanker/internal/index"
)

func snapshotWithLinks(docs []int64, links [][2]int64) *index.Snapshot {
	b := index.NewBuilder()
	for _, id := range docs {
		b.AddTerm("word", id, 1, 10)
	}
	for _, l := range links {
		b.AddLink(l[0], l[1])
	}
	return b.Snapshot()
}

func TestSymmetricCycleEqualScores(t *testing.T) {
	snap := snapshotWithLinks([]int64{1, 2, 3}, [][2]int64{{1, 2}, {2, 3}, {3, 1}})
	store := NewStore(DefaultIterationParams(), nil)
	store.Refresh(snap)

	scores := store.Scores()
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	var sum float64
	for id, score := range scores {
		if score < 0 {
			t.Errorf("doc %d has negative authority %v", id, score)
		}
		if math.Abs(score-1.0/3.0) > 1e-6 {
			t.Errorf("doc %d authority %v, want ~1/3", id, score)
		}
		sum += score
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("authority sum %v, want 1", sum)
	}
}

func TestScoresSumToOne(t *testing.T) {
	snap := snapshotWithLinks(
		[]int64{1, 2, 3, 4, 5},
		[][2]int64{{1, 2}, {1, 3}, {2, 3}, {4, 3}, {5, 3}, {3, 1}},
	)
	store := NewStore(DefaultIterationParams(), nil)
	store.Refresh(snap)

	scores := store.Scores()
	var sum float64
	for _, score := range scores {
		if score < 0 {
			t.Fatalf("negative authority score %v", score)
		}
		sum += score
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("authority sum %v, want 1", sum)
	}
	// Doc 3 is cited by four documents and must dominate.
	for _, id := range []int64{2, 4, 5} {
		if scores[3] <= scores[id] {
			t.Errorf("doc 3 (%v) should outrank doc %d (%v)", scores[3], id, scores[id])
		}
	}
}

func TestDegenerateGraphNoEdges(t *testing.T) {
	snap := snapshotWithLinks([]int64{1, 2, 3}, nil)
	store := NewStore(DefaultIterationParams(), nil)
	store.Refresh(snap)

	scores := store.Scores()
	if scores == nil {
		t.Fatal("store should be initialized after refresh")
	}
	if len(scores) != 0 {
		t.Fatalf("degenerate graph should yield empty scores, got %d entries", len(scores))
	}
}

func TestDegenerateGraphNoNodes(t *testing.T) {
	store := NewStore(DefaultIterationParams(), nil)
	store.Refresh(index.NewBuilder().Snapshot())

	if scores := store.Scores(); len(scores) != 0 {
		t.Fatalf("empty universe should yield empty scores, got %d entries", len(scores))
	}
}

func TestUninitializedVsComputedEmpty(t *testing.T) {
	store := NewStore(DefaultIterationParams(), nil)
	if store.Initialized() {
		t.Fatal("fresh store must not report initialized")
	}
	if store.Scores() != nil {
		t.Fatal("fresh store must return nil scores")
	}
	store.Refresh(index.NewBuilder().Snapshot())
	if !store.Initialized() {
		t.Fatal("refreshed store must report initialized")
	}
	if store.Scores() == nil {
		t.Fatal("refreshed store must return non-nil scores")
	}
}

func TestSelfLoopsAndDanglingNodes(t *testing.T) {
	snap := snapshotWithLinks([]int64{1, 2, 3}, [][2]int64{{1, 1}, {1, 2}})
	store := NewStore(DefaultIterationParams(), nil)
	store.Refresh(snap)

	scores := store.Scores()
	var sum float64
	for _, score := range scores {
		sum += score
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("authority sum %v, want 1", sum)
	}
	// Doc 3 has no in-links and must not outrank the cited doc 2.
	if scores[3] > scores[2] {
		t.Errorf("uncited doc 3 (%v) should not outrank cited doc 2 (%v)", scores[3], scores[2])
	}
}

func TestLinksOutsideUniverseDropped(t *testing.T) {
	snap := snapshotWithLinks([]int64{1, 2}, [][2]int64{{1, 2}, {1, 99}, {99, 1}})
	g := BuildGraph(snap)
	if g.NumEdges() != 1 {
		t.Fatalf("edges outside the universe must be dropped, got %d edges", g.NumEdges())
	}
}

func TestDeterministicAcrossRefreshes(t *testing.T) {
	snap := snapshotWithLinks(
		[]int64{10, 20, 30, 40},
		[][2]int64{{10, 20}, {20, 30}, {30, 40}, {40, 10}, {10, 30}},
	)
	store := NewStore(DefaultIterationParams(), nil)
	store.Refresh(snap)
	first := store.Scores()
	store.Refresh(snap)
	second := store.Scores()

	for id, score := range first {
		if second[id] != score {
			t.Fatalf("doc %d: %v vs %v across identical refreshes", id, score, second[id])
		}
	}
}
