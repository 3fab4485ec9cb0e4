package port

import "context"

// CompletionProvider abstracts the external completion service used for
// summaries and answers. Implementations can target Ollama, OpenAI, or any
// compatible API; a throttled response surfaces as a RateLimitError.
type CompletionProvider interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Complete sends a system instruction plus user text and returns the
	// model's response.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// EmbeddingProvider abstracts the embedding model.
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call,
	// one vector per input in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
