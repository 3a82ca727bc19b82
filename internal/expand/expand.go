// Package expand provides the query-expansion collaborator consumed by the
// ranking orchestrator: tokenization plus table-driven synonym expansion,
// with an optional Redis-backed cache for expanded term lists.
package expand

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Algolizen-Inc/LinkRanker/internal/tokenizer"
)

// Expander produces the expanded term sequence for a raw query string.
// Implementations must be safe for concurrent use.
type Expander interface {
	ExpandQuery(ctx context.Context, query string) ([]string, error)
}

// SynonymExpander tokenizes the query and unions each token with its
// configured synonyms. Output is deduplicated and sorted so expansion is
// deterministic across calls and processes.
type SynonymExpander struct {
	synonyms map[string][]string
	logger   *slog.Logger
}

// NewSynonymExpander creates an expander backed by an in-memory synonym
// table. A nil table is valid and yields tokenization-only expansion.
func NewSynonymExpander(synonyms map[string][]string) *SynonymExpander {
	return &SynonymExpander{
		synonyms: synonyms,
		logger:   slog.Default().With("component", "query-expander"),
	}
}

// LoadSynonyms reads a YAML file mapping term -> list of synonyms.
func LoadSynonyms(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonyms file %s: %w", path, err)
	}
	table := make(map[string][]string)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing synonyms file %s: %w", path, err)
	}
	return table, nil
}

// ExpandQuery returns the sorted set of query tokens and their synonyms.
func (e *SynonymExpander) ExpandQuery(_ context.Context, query string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, token := range tokenizer.Tokenize(query) {
		seen[token.Term] = struct{}{}
		for _, syn := range e.GetSynonyms(token.Term) {
			seen[syn] = struct{}{}
		}
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms, nil
}

// GetSynonyms returns the configured synonyms for a term, or nil.
func (e *SynonymExpander) GetSynonyms(term string) []string {
	return e.synonyms[term]
}
