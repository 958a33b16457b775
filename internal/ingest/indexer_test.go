package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
)

func TestIndexDocumentStoresClauseRecords(t *testing.T) {
	store := retrieval.NewMemoryStore()
	ix := NewIndexer(&llm.FakeEmbedder{}, store)

	n, err := ix.IndexDocument(context.Background(),
		"sess-1",
		"Rent is due on the first. Late fees apply after the fifth. The deposit is $500. Tenants must give 60 days notice.")

	require.NoError(t, err)
	require.Equal(t, 2, n)
	count, err := store.Count(context.Background(), retrieval.CollectionClauses)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestIndexDocumentEmptyText(t *testing.T) {
	ix := NewIndexer(&llm.FakeEmbedder{}, retrieval.NewMemoryStore())

	n, err := ix.IndexDocument(context.Background(), "sess-1", "")

	require.NoError(t, err)
	require.Zero(t, n)
}

func TestIndexDocumentPropagatesEmbedFailure(t *testing.T) {
	ix := NewIndexer(&llm.FakeEmbedder{Err: errors.New("quota")}, retrieval.NewMemoryStore())

	_, err := ix.IndexDocument(context.Background(), "sess-1", "One sentence. Two sentence.")

	require.Error(t, err)
}

func TestSeedResourcesIsIdempotent(t *testing.T) {
	store := retrieval.NewMemoryStore()
	emb := &llm.FakeEmbedder{}
	ix := NewIndexer(emb, store)
	ctx := context.Background()

	require.NoError(t, ix.SeedResources(ctx, defaultResources))
	count, err := store.Count(ctx, retrieval.CollectionResources)
	require.NoError(t, err)
	require.Equal(t, len(defaultResources), count)

	callsAfterFirst := emb.Calls
	require.NoError(t, ix.SeedResources(ctx, defaultResources))
	require.Equal(t, callsAfterFirst, emb.Calls)
}

func TestLoadResourcesYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`resources:
  - name: Test Office
    description: Helps with testing
    url: https://example.edu/test
    domain: finance
`), 0o644))

	resources, err := LoadResources(path)

	require.NoError(t, err)
	require.Len(t, resources, 1)
	require.Equal(t, "Test Office", resources[0].Name)
	require.Equal(t, "finance", resources[0].Domain)
}

func TestLoadResourcesDefaults(t *testing.T) {
	resources, err := LoadResources("")
	require.NoError(t, err)
	require.Equal(t, defaultResources, resources)
}
