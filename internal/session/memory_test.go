package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	s := Session{ID: "s1", FileName: "lease.pdf", RawText: "lease text", UploadedAt: time.Now()}
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.False(t, got.Processed)

	require.NoError(t, store.MarkProcessed(ctx, "s1"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, got.Processed)

	require.NoError(t, store.SaveAnalysis(ctx, "s1", "housing", json.RawMessage(`{"risk_level":"HIGH"}`)))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "housing", got.Domain)
	require.JSONEq(t, `{"risk_level":"HIGH"}`, string(got.Analysis))

	require.ErrorIs(t, store.MarkProcessed(ctx, "missing"), ErrNotFound)
	require.ErrorIs(t, store.SaveAnalysis(ctx, "missing", "finance", nil), ErrNotFound)
}
