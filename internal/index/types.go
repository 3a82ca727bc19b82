package index

import "context"

// TermStats holds per-document statistics for a single term.
type TermStats struct {
	Frequency int
}

// InvertedIndex maps a term to the documents containing it and their
// term statistics.
type InvertedIndex map[string]map[int64]TermStats

// DocLengths maps a document ID to its token count. It defines the full
// candidate universe for a ranking run: every document known to the engine
// appears here, whether or not any query term matches it.
type DocLengths map[int64]int

// Link is a directed reference between two documents: From cites To.
// Links are supplied by the indexing collaborator as a distinct relation,
// never inferred from term co-occurrence.
type Link struct {
	From int64
	To   int64
}

// Document is the stored form of a document, used by the display layer.
// Scoring never reads it.
type Document struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Source is the indexing collaborator: it supplies point-in-time snapshots
// of the inverted index, document lengths, and the reference-link relation,
// plus document lookup for result display.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
	GetDocumentByID(ctx context.Context, id int64) (Document, error)
}
