package textindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newswaters/newswaters/internal/testdb"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	return NewIndex(testdb.NewPlain(t))
}

func TestIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)

	require.NoError(t, idx.Add(ctx, 1, "rust compiler internals"))
	require.NoError(t, idx.Add(ctx, 2, "distributed database replication"))
	require.NoError(t, idx.Add(ctx, 3, "database replication is a distributed database problem"))

	got, err := idx.Search(ctx, "database replication", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, r := range got {
		assert.NotEqual(t, int32(1), r.ID)
		assert.Greater(t, r.Score, float32(0))
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestIndex_SearchRespectsLimit(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)

	require.NoError(t, idx.Add(ctx, 1, "go concurrency patterns"))
	require.NoError(t, idx.Add(ctx, 2, "go concurrency pitfalls"))
	require.NoError(t, idx.Add(ctx, 3, "go concurrency tutorial"))

	got, err := idx.Search(ctx, "go concurrency", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestIndex_SearchNoMatch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)

	require.NoError(t, idx.Add(ctx, 1, "kernel scheduling"))

	got, err := idx.Search(ctx, "gardening tips", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_ReAddReplacesDocument(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)

	require.NoError(t, idx.Add(ctx, 7, "old sentence about trains"))
	require.NoError(t, idx.Add(ctx, 7, "new sentence about boats"))

	got, err := idx.Search(ctx, "boats", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(7), got[0].ID)

	got, err = idx.Search(ctx, "trains", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_QuotesInQueryAreEscaped(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)

	require.NoError(t, idx.Add(ctx, 1, "plain text"))

	_, err := idx.Search(ctx, `broken "quote`, 10)
	require.NoError(t, err)
}

func TestIndex_ZeroLimit(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t)

	require.NoError(t, idx.Add(ctx, 1, "anything"))

	got, err := idx.Search(ctx, "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
