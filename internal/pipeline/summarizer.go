package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/repomind-ai/repomind/internal/port"
)

// Input budgets keep completion cost and latency bounded.
const (
	maxDiffChars = 3000
	maxFileChars = 2500
)

// Placeholder summaries written when there is nothing to summarize or
// summarization failed. The commit classifier treats these as "not done".
const (
	PlaceholderNoChanges   = "No significant changes."
	PlaceholderUnavailable = "Summary unavailable."
)

const diffSystemPrompt = `You are an expert programmer summarizing a git diff.
Summarize in one or two short sentences what this change does, in plain language.
Do not list file names. Do not add any preamble, output only the summary.`

const fileSystemPrompt = `You are an expert programmer summarizing a source file.
Explain in one or two short sentences the purpose of this file for a developer
new to the codebase. Do not add any preamble, output only the summary.`

// responsePreambles the completion model sometimes prepends despite the
// instruction not to; they are stripped from responses.
var responsePreambles = []string{
	"here are the changes:",
	"here is a summary:",
	"here is the summary:",
	"summary:",
}

// Summarizer produces short natural-language summaries for commit diffs and
// source files via the external completion service.
type Summarizer struct {
	ai        port.CompletionProvider
	diffRetry RetryConfig
	fileRetry RetryConfig
}

// NewSummarizer creates a summarizer with independent retry policies for
// diff and file summaries.
func NewSummarizer(ai port.CompletionProvider, diffRetry, fileRetry RetryConfig) *Summarizer {
	return &Summarizer{ai: ai, diffRetry: diffRetry, fileRetry: fileRetry}
}

// SummarizeDiff summarizes a commit diff. Errors are returned to the caller
// so the poller's state machine can count the attempt; only an empty diff
// short-circuits to the no-changes placeholder.
func (s *Summarizer) SummarizeDiff(ctx context.Context, diff string) (string, error) {
	diff = strings.TrimSpace(diff)
	if diff == "" {
		return PlaceholderNoChanges, nil
	}
	if len(diff) > maxDiffChars {
		diff = diff[:maxDiffChars]
	}

	response, err := RetryRateLimited(ctx, s.diffRetry, func() (string, error) {
		return s.ai.Complete(ctx, diffSystemPrompt, diff)
	})
	if err != nil {
		return "", err
	}
	return cleanResponse(response), nil
}

// SummarizeFile summarizes one source file. One bad file summary must not
// abort batch indexing, so errors are logged and collapsed into a
// placeholder instead of being returned.
func (s *Summarizer) SummarizeFile(ctx context.Context, path, content string) string {
	if len(content) > maxFileChars {
		content = content[:maxFileChars]
	}
	userText := "File: " + path + "\n\n" + content

	response, err := RetryRateLimited(ctx, s.fileRetry, func() (string, error) {
		return s.ai.Complete(ctx, fileSystemPrompt, userText)
	})
	if err != nil {
		slog.Error("file summary failed", "path", path, "error", err)
		return PlaceholderUnavailable
	}

	cleaned := cleanResponse(response)
	if cleaned == "" {
		return PlaceholderUnavailable
	}
	return cleaned
}

// cleanResponse trims the response and strips known preamble patterns.
func cleanResponse(response string) string {
	out := strings.TrimSpace(response)
	lower := strings.ToLower(out)
	for _, preamble := range responsePreambles {
		if strings.HasPrefix(lower, preamble) {
			out = strings.TrimSpace(out[len(preamble):])
			break
		}
	}
	return out
}
