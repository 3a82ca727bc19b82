package index

import (
	"sync"

	"github.com/Algolizen-Inc/LinkRanker/internal/tokenizer"
)

// Builder accumulates documents and reference links in memory and produces
// immutable Snapshots. It is the in-process implementation of the indexing
// collaborator, used by tests and by the snapshot reload path.
type Builder struct {
	mu         sync.Mutex
	inverted   InvertedIndex
	docLengths DocLengths
	links      []Link
}

func NewBuilder() *Builder {
	return &Builder{
		inverted:   make(InvertedIndex),
		docLengths: make(DocLengths),
	}
}

// AddDocument tokenizes title and body and records term frequencies plus
// the document's token count.
func (b *Builder) AddDocument(docID int64, title string, body string) {
	tokens := tokenizer.Tokenize(title + " " + body)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.docLengths[docID] = len(tokens)
	for _, token := range tokens {
		docs, exists := b.inverted[token.Term]
		if !exists {
			docs = make(map[int64]TermStats)
			b.inverted[token.Term] = docs
		}
		stats := docs[docID]
		stats.Frequency++
		docs[docID] = stats
	}
}

// AddTerm records a raw term frequency for a document without tokenization,
// and ensures the document exists in the length table.
func (b *Builder) AddTerm(term string, docID int64, frequency int, docLength int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.inverted[term]; !exists {
		b.inverted[term] = make(map[int64]TermStats)
	}
	b.inverted[term][docID] = TermStats{Frequency: frequency}
	b.docLengths[docID] = docLength
}

// AddLink records a directed reference edge from one document to another.
// Self-loops are permitted; the authority computation handles them.
func (b *Builder) AddLink(from int64, to int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.links = append(b.links, Link{From: from, To: to})
}

// Snapshot copies the accumulated state into an immutable Snapshot. The
// builder remains usable afterwards; later mutations do not affect the
// returned snapshot.
func (b *Builder) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	inverted := make(InvertedIndex, len(b.inverted))
	for term, docs := range b.inverted {
		copied := make(map[int64]TermStats, len(docs))
		for id, stats := range docs {
			copied[id] = stats
		}
		inverted[term] = copied
	}
	docLengths := make(DocLengths, len(b.docLengths))
	for id, length := range b.docLengths {
		docLengths[id] = length
	}
	links := make([]Link, len(b.links))
	copy(links, b.links)

	return NewSnapshot(inverted, docLengths, links)
}
