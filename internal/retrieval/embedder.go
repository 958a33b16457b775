package retrieval

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"campuslens/internal/llm"
)

// CachedEmbedder memoizes embedding calls. Stage functions re-embed the same
// seed queries on every run, so a small LRU removes most of that traffic.
type CachedEmbedder struct {
	next  llm.Embedder
	cache *lru.Cache[string, []float32]
}

func NewCachedEmbedder(next llm.Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string, task llm.EmbedTask) ([]float32, error) {
	key := string(task) + "\x00" + text
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}
	vec, err := e.next.Embed(ctx, text, task)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, vec)
	return vec, nil
}
