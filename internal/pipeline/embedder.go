package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/repomind-ai/repomind/internal/port"
)

// Embedder converts summary texts into fixed-dimension vectors, dropping
// anything the model returns with the wrong shape.
type Embedder struct {
	provider  port.EmbeddingProvider
	dimension int
}

// NewEmbedder creates an embedder that accepts only vectors of the given
// dimension.
func NewEmbedder(provider port.EmbeddingProvider, dimension int) *Embedder {
	return &Embedder{provider: provider, dimension: dimension}
}

// Dimension returns the expected vector dimensionality.
func (e *Embedder) Dimension() int { return e.dimension }

// EmbedBatch embeds a batch of texts, returning one entry per input in the
// same order. A missing or wrong-dimension vector becomes nil so the caller
// can skip that item; it is never an error.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		if i >= len(vectors) {
			break
		}
		if len(vectors[i]) != e.dimension {
			slog.Warn("dropping embedding with unexpected dimension",
				"index", i, "got", len(vectors[i]), "want", e.dimension)
			continue
		}
		out[i] = vectors[i]
	}
	return out, nil
}

// EmbedQuery embeds a single query text, failing if the model does not
// produce a vector of the expected dimension.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vector) != e.dimension {
		return nil, fmt.Errorf("embed query: got %d dimensions, want %d", len(vector), e.dimension)
	}
	return vector, nil
}
