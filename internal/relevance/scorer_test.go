package relevance

import (
	"math"
	"testing"

	"github.com/Algolizen-Inc/LinkRanker/internal/index"
)

func buildSnapshot(t *testing.T) *index.Snapshot {
	t.Helper()
	b := index.NewBuilder()
	// "cat" appears twice in doc 1 (length 10), nowhere else.
	b.AddTerm("cat", 1, 2, 10)
	b.AddTerm("dog", 2, 1, 10)
	b.AddTerm("bird", 3, 3, 10)
	return b.Snapshot()
}

func TestScoreHandComputed(t *testing.T) {
	snap := buildSnapshot(t)
	s := NewScorer(snap, Params{K1: 1.5, B: 0.75})

	// N=3, n_cat=1: idf = ln((3-1+0.5)/(1+0.5) + 1) = ln(8/3)
	// tf=2, len=10, avg=10+eps: denom = 2 + 1.5*(1-0.75+0.75*10/(10+1e-6))
	// score = idf * 2*2.5/denom
	avg := 10.0 + 1e-6
	idf := math.Log((3-1+0.5)/(1+0.5) + 1.0)
	denom := 2 + 1.5*(1-0.75+0.75*10/avg)
	want := idf * 2 * 2.5 / denom

	got := s.Score([]string{"cat"}, 1)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Score(cat, doc1) = %v, want %v", got, want)
	}
}

func TestScoreZeroForNonMatchingDocs(t *testing.T) {
	snap := buildSnapshot(t)
	s := NewScorer(snap, DefaultParams())

	for _, docID := range []int64{2, 3} {
		if got := s.Score([]string{"cat"}, docID); got != 0 {
			t.Errorf("Score(cat, doc%d) = %v, want 0", docID, got)
		}
	}
}

func TestScoreUnknownTermAndDoc(t *testing.T) {
	snap := buildSnapshot(t)
	s := NewScorer(snap, DefaultParams())

	if got := s.Score([]string{"zebra"}, 1); got != 0 {
		t.Errorf("unknown term scored %v, want 0", got)
	}
	if got := s.Score([]string{"cat"}, 99); got != 0 {
		t.Errorf("unknown doc scored %v, want 0", got)
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	snap := buildSnapshot(t)
	s := NewScorer(snap, DefaultParams())
	if got := s.Score(nil, 1); got != 0 {
		t.Errorf("empty query scored %v, want 0", got)
	}
}

func TestIDFDecreasesWithDocFrequency(t *testing.T) {
	b := index.NewBuilder()
	b.AddTerm("rare", 1, 1, 5)
	b.AddTerm("common", 1, 1, 5)
	b.AddTerm("common", 2, 1, 5)
	b.AddTerm("common", 3, 1, 5)
	b.AddTerm("filler", 4, 1, 5)
	snap := b.Snapshot()
	s := NewScorer(snap, DefaultParams())

	if s.IDF("rare") <= s.IDF("common") {
		t.Fatalf("idf(rare)=%v should exceed idf(common)=%v", s.IDF("rare"), s.IDF("common"))
	}
	if s.IDF("common") < 0 {
		t.Fatalf("idf must stay non-negative, got %v", s.IDF("common"))
	}
	// Defined even for terms in no documents.
	if got, want := s.IDF("absent"), math.Log((4+0.5)/0.5+1); math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(absent) = %v, want %v", got, want)
	}
}

func TestScoreMonotonicInTermFrequency(t *testing.T) {
	var prev float64
	for tf := 1; tf <= 20; tf++ {
		b := index.NewBuilder()
		b.AddTerm("cat", 1, tf, 50)
		b.AddTerm("pad", 2, 1, 50)
		s := NewScorer(b.Snapshot(), DefaultParams())
		score := s.Score([]string{"cat"}, 1)
		if score < prev {
			t.Fatalf("score decreased from %v to %v at tf=%d", prev, score, tf)
		}
		prev = score
	}
}

func TestDuplicateTermsAccumulate(t *testing.T) {
	snap := buildSnapshot(t)
	s := NewScorer(snap, DefaultParams())

	single := s.Score([]string{"cat"}, 1)
	tripled := s.Score([]string{"cat", "cat", "cat"}, 1)
	if math.Abs(tripled-3*single) > 1e-12 {
		t.Fatalf("tripled term score %v, want %v", tripled, 3*single)
	}
}

func TestPlusParamsDiffer(t *testing.T) {
	snap := buildSnapshot(t)
	standard := NewScorer(snap, DefaultParams()).Score([]string{"cat"}, 1)
	plus := NewScorer(snap, PlusParams()).Score([]string{"cat"}, 1)
	if standard == plus {
		t.Fatalf("standard and plus variants should produce different scores, both %v", standard)
	}
}

func TestEmptyIndexNoDivisionFault(t *testing.T) {
	snap := index.NewBuilder().Snapshot()
	s := NewScorer(snap, Params{K1: 1.5, B: 1.0})
	// b=1 and tf=0 makes the denominator depend entirely on doc length;
	// an empty index must still score 0, not NaN or a panic.
	got := s.Score([]string{"cat"}, 1)
	if got != 0 || math.IsNaN(got) {
		t.Fatalf("empty index score = %v, want 0", got)
	}
}
