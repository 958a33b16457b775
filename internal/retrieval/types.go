// Package retrieval provides the embedding and nearest-neighbor layer behind
// the pipeline: a query is embedded and matched against one of two persisted
// collections (document clauses, campus resources).
package retrieval

import "context"

// Collection names the two indexed corpora.
type Collection string

const (
	// CollectionClauses holds per-document clause chunks indexed at ingest.
	CollectionClauses Collection = "clauses"
	// CollectionResources holds the static campus/support resource index.
	CollectionResources Collection = "resources"
)

// Record is one indexed entry. Clause records carry SessionID; resource
// records carry Name/URL/Description. Domain tags are meaningful only for
// resources (clauses are not domain-tagged at ingest).
type Record struct {
	ID          string
	Text        string
	Domain      string
	SessionID   string
	Name        string
	URL         string
	Description string
	Vector      []float32
}

// Item is a retrieval hit handed to the pipeline.
type Item struct {
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	SourceQuery string  `json:"source_query,omitempty"`
	Name        string  `json:"name,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Domain      string  `json:"domain,omitempty"`
}

// VectorStore persists records and ranks them by similarity to a query
// vector. domain == "" means no filter.
type VectorStore interface {
	Upsert(ctx context.Context, col Collection, recs ...Record) error
	Search(ctx context.Context, col Collection, vector []float32, domain string, k int) ([]Record, []float64, error)
	Count(ctx context.Context, col Collection) (int, error)
}
