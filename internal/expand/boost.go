package expand

import (
	"context"

	"github.com/Algolizen-Inc/LinkRanker/internal/augment"
)

// BoostedExpander applies configured term boosts after the inner expansion:
// exact-match terms are repeated three times, and boosted terms are repeated
// floor(multiplier) times. The repeated occurrences raise those terms'
// effective term-frequency contribution during scoring.
type BoostedExpander struct {
	inner  Expander
	boosts map[string]float64
	exact  []string
}

func NewBoostedExpander(inner Expander, boosts map[string]float64, exact []string) *BoostedExpander {
	return &BoostedExpander{inner: inner, boosts: boosts, exact: exact}
}

func (b *BoostedExpander) ExpandQuery(ctx context.Context, query string) ([]string, error) {
	terms, err := b.inner.ExpandQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	terms = augment.ExactMatchBoost(terms, b.exact)
	terms = augment.ApplyBoosts(terms, b.boosts)
	return terms, nil
}
