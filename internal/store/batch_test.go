package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docWrites(n int) []Write {
	writes := make([]Write, n)
	for i := range writes {
		writes[i] = Write{
			Collection: "items",
			ID:         fmt.Sprintf("doc-%04d", i),
			Set:        map[string]any{"n": i},
		}
	}
	return writes
}

func TestApplyChunkedSplitsIntoSequentialBatches(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	err := ApplyChunked(ctx, ms, docWrites(950), ChunkSize)
	require.NoError(t, err)

	// ceil(950 / 400) = 3 atomic batches
	assert.Equal(t, 3, ms.Applies())

	doc, err := ms.Get(ctx, "items", "doc-0949")
	require.NoError(t, err)
	require.NotNil(t, doc)
}

func TestApplyChunkedFailureKeepsEarlierChunks(t *testing.T) {
	ms := NewMemoryStore()
	ms.FailAfter = 1
	ctx := context.Background()

	err := ApplyChunked(ctx, ms, docWrites(800), ChunkSize)
	require.Error(t, err)

	// Chunk one committed, chunk two did not: that is the documented
	// trade-off, not rollback territory.
	first, err := ms.Get(ctx, "items", "doc-0000")
	require.NoError(t, err)
	assert.NotNil(t, first)

	last, err := ms.Get(ctx, "items", "doc-0799")
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestMemoryStoreSetSemantics(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	err := ms.Apply(ctx, Write{
		Collection: "relationships",
		ID:         "alice",
		Union:      map[string][]string{"friends": {"bob", "carol"}},
	})
	require.NoError(t, err)

	// Union is idempotent
	err = ms.Apply(ctx, Write{
		Collection: "relationships",
		ID:         "alice",
		Union:      map[string][]string{"friends": {"bob"}},
	})
	require.NoError(t, err)

	doc, err := ms.Get(ctx, "relationships", "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, Strings(doc.Data, "friends"))

	// Remove is set-difference and tolerates absent values
	err = ms.Apply(ctx, Write{
		Collection: "relationships",
		ID:         "alice",
		Remove:     map[string][]string{"friends": {"carol", "nobody"}},
	})
	require.NoError(t, err)

	doc, err = ms.Get(ctx, "relationships", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, Strings(doc.Data, "friends"))

	// Unset deletes the field
	err = ms.Apply(ctx, Write{
		Collection: "relationships",
		ID:         "alice",
		Unset:      []string{"friends"},
	})
	require.NoError(t, err)

	doc, err = ms.Get(ctx, "relationships", "alice")
	require.NoError(t, err)
	_, present := doc.Data["friends"]
	assert.False(t, present)
}

func TestMemoryStoreGetAllOmitsMissing(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, ms.Apply(ctx,
		Write{Collection: "users", ID: "a", Set: map[string]any{"displayName": "A"}},
		Write{Collection: "users", ID: "b", Set: map[string]any{"displayName": "B"}},
	))

	docs, err := ms.GetAll(ctx, "users", []string{"a", "ghost", "b"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}
