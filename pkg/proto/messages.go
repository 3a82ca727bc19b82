// Package proto defines the shared message types used for internal RPC
// communication with the ranking service.
//
// The types use JSON struct tags for serialization over the lightweight
// JSON-over-TCP RPC layer (see pkg/rpc).
package proto

// RankRequest asks the ranking service for an ordered result list.
// ContentWeight and AuthorityWeight should sum to 1; values outside that
// contract are accepted and produce unnormalized combined scores.
type RankRequest struct {
	Query           string  `json:"query"`
	ContentWeight   float64 `json:"content_weight"`
	AuthorityWeight float64 `json:"authority_weight"`
	Limit           int32   `json:"limit,omitempty"`
}

// RankedDoc is one entry of an ordered ranking.
type RankedDoc struct {
	DocID int64   `json:"doc_id"`
	Score float64 `json:"score"`
}

// RankResponse carries the ordered ranking back to the caller.
type RankResponse struct {
	Query             string      `json:"query"`
	Candidates        int32       `json:"candidates"`
	DegradedAuthority bool        `json:"degraded_authority"`
	Results           []RankedDoc `json:"results"`
}

// RefreshRequest triggers a snapshot reload and authority recomputation.
type RefreshRequest struct{}

// RefreshResponse reports the post-refresh snapshot size.
type RefreshResponse struct {
	Docs  int32 `json:"docs"`
	Links int32 `json:"links"`
}

// GetDocumentRequest fetches a stored document for display.
type GetDocumentRequest struct {
	DocID int64 `json:"doc_id"`
}

// GetDocumentResponse carries the stored document fields.
type GetDocumentResponse struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
