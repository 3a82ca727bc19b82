// Package relevance computes BM25-family textual relevance scores over an
// index snapshot.
package relevance

import (
	"math"

	"github.com/Algolizen-Inc/LinkRanker/internal/index"
)

// avgLenEpsilon guards the length-normalization division when the index is
// empty and the average document length is 0.
const avgLenEpsilon = 1e-6

// Params are the BM25 tunables. K1 controls term-frequency saturation, B
// the strength of document-length normalization.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams matches the standard BM25 configuration.
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75}
}

// PlusParams is the alternative tunable set used for final ranking. It is
// the same formula with different constants, not the BM25+ lower-bound
// variant.
func PlusParams() Params {
	return Params{K1: 1.8, B: 0.5}
}

// Scorer scores documents against query term sequences. It holds only
// read-only references and is safe for concurrent use.
type Scorer struct {
	snapshot *index.Snapshot
	params   Params
}

func NewScorer(snapshot *index.Snapshot, params Params) *Scorer {
	return &Scorer{snapshot: snapshot, params: params}
}

// IDF returns the inverse document frequency of term. The +1 inside the
// log keeps the result non-negative even when the term appears in more
// than half the documents, and defined when it appears in none.
func (s *Scorer) IDF(term string) float64 {
	n := float64(s.snapshot.DocFrequency(term))
	total := float64(s.snapshot.TotalDocs())
	return math.Log((total-n+0.5)/(n+0.5) + 1.0)
}

// Score sums the per-term BM25 contributions of queryTerms for the given
// document. Duplicate terms in the sequence contribute multiple times,
// which is how boosting raises a term's weight. Terms or documents absent
// from the index contribute 0.
func (s *Scorer) Score(queryTerms []string, docID int64) float64 {
	docLen := float64(s.snapshot.DocLength(docID))
	avgLen := s.snapshot.AvgDocLength() + avgLenEpsilon

	var score float64
	for _, term := range queryTerms {
		tf := float64(s.snapshot.TermFrequency(term, docID))
		denominator := tf + s.params.K1*(1-s.params.B+s.params.B*docLen/avgLen)
		if denominator == 0 {
			continue
		}
		score += s.IDF(term) * tf * (s.params.K1 + 1) / denominator
	}
	return score
}
