package retrieval

import (
	"context"
	"log"

	"campuslens/internal/llm"
)

// Retriever embeds a query and ranks it against one of the two collections.
// Every failure degrades to an empty result list: callers treat empty as
// "no context", never as an error.
type Retriever struct {
	emb   llm.Embedder
	store VectorStore
}

func NewRetriever(emb llm.Embedder, store VectorStore) *Retriever {
	return &Retriever{emb: emb, store: store}
}

// Search returns up to k items ranked by similarity. The domain filter only
// applies to the resource collection: clause records are not domain-tagged at
// ingest, so filtering them would silently return nothing.
func (r *Retriever) Search(ctx context.Context, query string, col Collection, domain string, k int) []Item {
	if col == CollectionClauses {
		domain = ""
	}
	vec, err := r.emb.Embed(ctx, query, llm.TaskQuery)
	if err != nil {
		log.Printf("retrieval: embed query failed: %v", err)
		return nil
	}
	recs, scores, err := r.store.Search(ctx, col, vec, domain, k)
	if err != nil {
		log.Printf("retrieval: search %s failed: %v", col, err)
		return nil
	}
	items := make([]Item, 0, len(recs))
	for i, rec := range recs {
		items = append(items, Item{
			Text:        rec.Text,
			Score:       scores[i],
			SourceQuery: truncate(query, 50),
			Name:        rec.Name,
			URL:         rec.URL,
			Description: rec.Description,
			Domain:      rec.Domain,
		})
	}
	return items
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
