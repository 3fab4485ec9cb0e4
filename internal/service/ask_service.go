package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/pipeline"
	"github.com/repomind-ai/repomind/internal/port"
)

// NotFoundAnswer is returned when no stored file clears the similarity
// threshold for a question.
const NotFoundAnswer = "I could not find anything relevant to that question in this codebase."

const answerSystemPrompt = `You are RepoMind, an expert code analyst. Answer questions
about the codebase using only the provided file summaries and contents.
Be precise and cite the source file paths you relied on.`

// AskService answers questions about a project by ranking stored file
// embeddings against the embedded question and feeding the best matches to
// the completion service.
type AskService struct {
	embedder  *pipeline.Embedder
	files     port.FileStore
	ai        port.CompletionProvider
	limit     int
	threshold float64
}

// NewAskService creates an ask service. limit and threshold bound the
// similarity search.
func NewAskService(embedder *pipeline.Embedder, files port.FileStore, ai port.CompletionProvider, limit int, threshold float64) *AskService {
	return &AskService{embedder: embedder, files: files, ai: ai, limit: limit, threshold: threshold}
}

// Ask embeds the question, retrieves the most similar indexed files, and
// generates an answer grounded in them. An empty result set is an answerable
// outcome, not an error.
func (s *AskService) Ask(ctx context.Context, projectID, question string) (string, []domain.SimilarFile, error) {
	slog.Info("answering question", "project_id", projectID, "question", question)

	queryVector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.files.SearchSimilar(ctx, projectID, queryVector, s.limit, s.threshold)
	if err != nil {
		return "", nil, fmt.Errorf("search similar: %w", err)
	}

	if len(matches) == 0 {
		return NotFoundAnswer, nil, nil
	}

	var contextParts strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&contextParts, "// File: %s (similarity: %.2f)\n// %s\n%s\n\n", m.FilePath, m.Similarity, m.Summary, m.Content)
	}

	userPrompt := fmt.Sprintf("Relevant files:\n%s\nQuestion: %s", contextParts.String(), question)
	answer, err := s.ai.Complete(ctx, answerSystemPrompt, userPrompt)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}

	return answer, matches, nil
}
