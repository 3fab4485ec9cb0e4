package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("one vector per input in order", func(t *testing.T) {
		e := NewEmbedder(&fakeEmbedProvider{dim: 384}, 384)

		vectors, err := e.EmbedBatch(ctx, []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		for i, v := range vectors {
			assert.Len(t, v, 384, "vector %d", i)
		}
	})

	t.Run("wrong-dimension vectors become nil", func(t *testing.T) {
		provider := &fakeEmbedProvider{dim: 384, badIndexes: map[int]bool{1: true}}
		e := NewEmbedder(provider, 384)

		vectors, err := e.EmbedBatch(ctx, []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		assert.NotNil(t, vectors[0])
		assert.Nil(t, vectors[1])
		assert.NotNil(t, vectors[2])
	})

	t.Run("empty input makes no call", func(t *testing.T) {
		provider := &fakeEmbedProvider{dim: 384}
		e := NewEmbedder(provider, 384)

		vectors, err := e.EmbedBatch(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, vectors)
		assert.Zero(t, provider.calls)
	})

	t.Run("provider error propagates", func(t *testing.T) {
		provider := &fakeEmbedProvider{err: errors.New("embed down")}
		e := NewEmbedder(provider, 384)

		_, err := e.EmbedBatch(ctx, []string{"a"})
		assert.Error(t, err)
	})
}

func TestEmbedQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns expected-dimension vector", func(t *testing.T) {
		e := NewEmbedder(&fakeEmbedProvider{dim: 384}, 384)

		vector, err := e.EmbedQuery(ctx, "what does main do?")
		require.NoError(t, err)
		assert.Len(t, vector, 384)
	})

	t.Run("wrong dimension is an error", func(t *testing.T) {
		e := NewEmbedder(&fakeEmbedProvider{dim: 512}, 384)

		_, err := e.EmbedQuery(ctx, "question")
		assert.Error(t, err)
	})
}
