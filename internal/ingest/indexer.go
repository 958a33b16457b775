package ingest

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
)

// embedConcurrency bounds parallel embedding calls during one ingest.
const embedConcurrency = 4

// Indexer embeds clauses and resources and writes them to the vector store.
type Indexer struct {
	emb   llm.Embedder
	store retrieval.VectorStore
}

func NewIndexer(emb llm.Embedder, store retrieval.VectorStore) *Indexer {
	return &Indexer{emb: emb, store: store}
}

// IndexDocument splits the extracted text into clauses, embeds them
// concurrently and upserts the batch. Returns the number of clauses indexed.
func (ix *Indexer) IndexDocument(ctx context.Context, sessionID, text string) (int, error) {
	clauses := SplitClauses(text)
	if len(clauses) == 0 {
		return 0, nil
	}

	records := make([]retrieval.Record, len(clauses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, clause := range clauses {
		g.Go(func() error {
			vec, err := ix.emb.Embed(gctx, clause, llm.TaskDocument)
			if err != nil {
				return fmt.Errorf("embed clause %d: %w", i, err)
			}
			records[i] = retrieval.Record{
				ID:        fmt.Sprintf("%s_c%d", sessionID, i),
				Text:      clause,
				SessionID: sessionID,
				Vector:    vec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := ix.store.Upsert(ctx, retrieval.CollectionClauses, records...); err != nil {
		return 0, fmt.Errorf("upsert clauses: %w", err)
	}
	log.Printf("ingest: indexed %d clauses for session %s", len(records), sessionID)
	return len(records), nil
}
