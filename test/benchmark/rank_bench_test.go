// Package benchmark contains Go benchmarks for the ranking pipeline: BM25
// scoring, authority power iteration, and the full orchestrated rank path,
// measuring throughput and allocation behaviour.
package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Algolizen-Inc/LinkRanker/internal/authority"
	"github.com/Algolizen-Inc/LinkRanker/internal/expand"
	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/internal/ranking"
	"github.com/Algolizen-Inc/LinkRanker/internal/relevance"
)

var benchVocabulary = []string{
	"distributed", "systems", "ranking", "graph", "authority", "relevance",
	"index", "snapshot", "query", "document", "link", "score", "engine",
	"cache", "network", "iteration", "vector", "centrality", "search", "term",
}

// buildCorpus produces a snapshot with numDocs synthetic documents and a
// random reference graph of roughly 4 outgoing links per document.
func buildCorpus(numDocs int) *index.Snapshot {
	rng := rand.New(rand.NewSource(42))
	builder := index.NewBuilder()
	for i := 0; i < numDocs; i++ {
		words := make([]byte, 0, 256)
		for w := 0; w < 30; w++ {
			words = append(words, benchVocabulary[rng.Intn(len(benchVocabulary))]...)
			words = append(words, ' ')
		}
		builder.AddDocument(int64(i+1), "benchmark document", string(words))
	}
	for i := 0; i < numDocs; i++ {
		for l := 0; l < 4; l++ {
			builder.AddLink(int64(i+1), int64(rng.Intn(numDocs)+1))
		}
	}
	return builder.Snapshot()
}

// BenchmarkRelevanceScore measures single-document BM25 scoring latency over
// a 1000-document corpus.
func BenchmarkRelevanceScore(b *testing.B) {
	snapshot := buildCorpus(1000)
	scorer := relevance.NewScorer(snapshot, relevance.DefaultParams())
	terms := []string{"distributed", "ranking", "graph"}
	docIDs := snapshot.DocIDs()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = scorer.Score(terms, docIDs[i%len(docIDs)])
	}
}

// BenchmarkAuthorityRefresh measures the full power-iteration authority
// computation at various graph sizes.
func BenchmarkAuthorityRefresh(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs-%d", numDocs), func(b *testing.B) {
			snapshot := buildCorpus(numDocs)
			store := authority.NewStore(authority.DefaultIterationParams(), nil)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				store.Refresh(snapshot)
			}
		})
	}
}

// BenchmarkRank measures the full orchestrated ranking path (expansion,
// bounded fan-out scoring, blending, sort) over the whole candidate universe.
func BenchmarkRank(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("docs-%d", numDocs), func(b *testing.B) {
			snapshot := buildCorpus(numDocs)
			store := authority.NewStore(authority.DefaultIterationParams(), nil)
			store.Refresh(snapshot)

			orch := ranking.New(store, expand.NewSynonymExpander(nil), relevance.PlusParams(), 0, nil)
			orch.SetSnapshot(snapshot)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := orch.Rank(ctx, "distributed ranking graph", 0.7, 0.3); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRankParallel measures concurrent ranking throughput, the shape of
// production load once results fall out of cache.
func BenchmarkRankParallel(b *testing.B) {
	snapshot := buildCorpus(1000)
	store := authority.NewStore(authority.DefaultIterationParams(), nil)
	store.Refresh(snapshot)

	orch := ranking.New(store, expand.NewSynonymExpander(nil), relevance.PlusParams(), 0, nil)
	orch.SetSnapshot(snapshot)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := orch.Rank(ctx, "authority centrality", 0.7, 0.3); err != nil {
				b.Fatal(err)
			}
		}
	})
}
