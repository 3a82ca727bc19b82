// Package index defines the point-in-time index snapshot consumed by the
// ranking engine: inverted index, document lengths, and the document
// reference-link relation, plus sources that load them.
package index

import "sort"

// Snapshot is an immutable point-in-time view of the index. It is built
// once, then shared read-only across concurrent scoring tasks; nothing in
// the ranking engine mutates it.
type Snapshot struct {
	inverted   InvertedIndex
	docLengths DocLengths
	links      []Link
	avgDocLen  float64
}

// NewSnapshot assembles a snapshot from the indexing collaborator's raw
// tables. The average document length is computed once here.
func NewSnapshot(inverted InvertedIndex, docLengths DocLengths, links []Link) *Snapshot {
	var totalTokens int64
	for _, length := range docLengths {
		totalTokens += int64(length)
	}
	var avg float64
	if len(docLengths) > 0 {
		avg = float64(totalTokens) / float64(len(docLengths))
	}
	return &Snapshot{
		inverted:   inverted,
		docLengths: docLengths,
		links:      links,
		avgDocLen:  avg,
	}
}

// TermFrequency returns the raw occurrence count of term in the given
// document, or 0 when either is absent.
func (s *Snapshot) TermFrequency(term string, docID int64) int {
	return s.inverted[term][docID].Frequency
}

// DocFrequency returns the number of documents containing term.
func (s *Snapshot) DocFrequency(term string) int {
	return len(s.inverted[term])
}

// DocLength returns the token count of the given document, or 0 if unknown.
func (s *Snapshot) DocLength(docID int64) int {
	return s.docLengths[docID]
}

// TotalDocs returns the size of the candidate document universe.
func (s *Snapshot) TotalDocs() int {
	return len(s.docLengths)
}

// AvgDocLength returns the index-wide mean document length. Zero when the
// index is empty; scorers add an epsilon before dividing.
func (s *Snapshot) AvgDocLength() float64 {
	return s.avgDocLen
}

// DocIDs returns every document ID in the candidate universe in ascending
// order.
func (s *Snapshot) DocIDs() []int64 {
	ids := make([]int64, 0, len(s.docLengths))
	for id := range s.docLengths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Links returns the document reference edges recorded in this snapshot.
func (s *Snapshot) Links() []Link {
	return s.links
}

// HasDoc reports whether docID belongs to the candidate universe.
func (s *Snapshot) HasDoc(docID int64) bool {
	_, ok := s.docLengths[docID]
	return ok
}
