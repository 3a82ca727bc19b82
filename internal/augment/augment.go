// Package augment provides pure transformations over expanded query term
// sequences: frequency boosting, exact-match boosting, fuzzy term
// equivalence, and phrase-frequency counting. Because scoring operates on
// term sequences rather than sets, repeating a term directly raises its
// effective term-frequency contribution.
package augment

import (
	"strings"

	"github.com/agext/levenshtein"
)

// FuzzyThreshold is the minimum normalized similarity for two terms to be
// treated as equivalent.
const FuzzyThreshold = 0.80

// exactMatchRepeat is how many times an exact-match term appears in the
// boosted output.
const exactMatchRepeat = 3

// ApplyBoosts repeats each boosted term floor(multiplier) times in the
// output, replacing its single occurrence. Terms without a boost, and terms
// whose multiplier floors to zero or below, pass through unchanged.
func ApplyBoosts(terms []string, boosts map[string]float64) []string {
	if len(boosts) == 0 {
		return terms
	}
	boosted := make([]string, 0, len(terms))
	for _, term := range terms {
		multiplier, ok := boosts[term]
		if !ok || int(multiplier) < 1 {
			boosted = append(boosted, term)
			continue
		}
		for i := 0; i < int(multiplier); i++ {
			boosted = append(boosted, term)
		}
	}
	return boosted
}

// ExactMatchBoost repeats each term from the exact set three times in the
// output when present in the query.
func ExactMatchBoost(terms []string, exact []string) []string {
	if len(exact) == 0 {
		return terms
	}
	exactSet := make(map[string]struct{}, len(exact))
	for _, term := range exact {
		exactSet[term] = struct{}{}
	}
	boosted := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, ok := exactSet[term]; ok {
			for i := 0; i < exactMatchRepeat; i++ {
				boosted = append(boosted, term)
			}
		} else {
			boosted = append(boosted, term)
		}
	}
	return boosted
}

// FuzzyEquivalent reports whether two terms are close enough in spelling to
// be treated as the same term. Comparison is case-insensitive.
func FuzzyEquivalent(a string, b string) bool {
	return levenshtein.Similarity(strings.ToLower(a), strings.ToLower(b), nil) > FuzzyThreshold
}

// PhraseMatches counts the total occurrences of query terms within a
// document's token sequence. It is an auxiliary signal, not part of the
// primary relevance score.
func PhraseMatches(queryTerms []string, docTokens []string) int {
	counts := make(map[string]int, len(docTokens))
	for _, token := range docTokens {
		counts[token]++
	}
	var matches int
	for _, term := range queryTerms {
		matches += counts[term]
	}
	return matches
}
