package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetry() RetryConfig {
	return RetryConfig{MaxRetries: 0}
}

func TestSummarizeDiff(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cleaned summary", func(t *testing.T) {
		ai := &fakeCompletion{response: "Here are the changes: Adds a retry loop."}
		s := NewSummarizer(ai, testRetry(), testRetry())

		summary, err := s.SummarizeDiff(ctx, "diff --git a/main.go b/main.go\n+retry")
		require.NoError(t, err)
		assert.Equal(t, "Adds a retry loop.", summary)
	})

	t.Run("empty diff short-circuits without a call", func(t *testing.T) {
		ai := &fakeCompletion{response: "unused"}
		s := NewSummarizer(ai, testRetry(), testRetry())

		summary, err := s.SummarizeDiff(ctx, "   \n ")
		require.NoError(t, err)
		assert.Equal(t, PlaceholderNoChanges, summary)
		assert.Zero(t, ai.calls)
	})

	t.Run("truncates oversized diffs", func(t *testing.T) {
		var seen string
		ai := &recordingCompletion{response: "ok", record: func(user string) { seen = user }}
		s := NewSummarizer(ai, testRetry(), testRetry())

		_, err := s.SummarizeDiff(ctx, strings.Repeat("x", 10_000))
		require.NoError(t, err)
		assert.Len(t, seen, maxDiffChars)
	})

	t.Run("errors are re-raised to the caller", func(t *testing.T) {
		boom := errors.New("completion exploded")
		ai := &fakeCompletion{errs: []error{boom}}
		s := NewSummarizer(ai, testRetry(), testRetry())

		_, err := s.SummarizeDiff(ctx, "diff --git a/x b/x\n+something changed here")
		assert.ErrorIs(t, err, boom)
	})
}

func TestSummarizeFile(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cleaned summary", func(t *testing.T) {
		ai := &fakeCompletion{response: "Summary: Implements the HTTP router."}
		s := NewSummarizer(ai, testRetry(), testRetry())

		assert.Equal(t, "Implements the HTTP router.", s.SummarizeFile(ctx, "router.go", "package router"))
	})

	t.Run("truncates oversized files", func(t *testing.T) {
		var seen string
		ai := &recordingCompletion{response: "ok", record: func(user string) { seen = user }}
		s := NewSummarizer(ai, testRetry(), testRetry())

		s.SummarizeFile(ctx, "big.go", strings.Repeat("y", 10_000))
		// The prompt prefixes the path, the content itself is capped.
		assert.LessOrEqual(t, len(seen), maxFileChars+len("File: big.go\n\n"))
	})

	t.Run("swallows errors into a placeholder", func(t *testing.T) {
		ai := &fakeCompletion{errs: []error{errors.New("completion exploded")}}
		s := NewSummarizer(ai, testRetry(), testRetry())

		assert.Equal(t, PlaceholderUnavailable, s.SummarizeFile(ctx, "bad.go", "package bad"))
	})

	t.Run("empty response becomes placeholder", func(t *testing.T) {
		ai := &fakeCompletion{response: "   "}
		s := NewSummarizer(ai, testRetry(), testRetry())

		assert.Equal(t, PlaceholderUnavailable, s.SummarizeFile(ctx, "empty.go", "package empty"))
	})
}

func TestCleanResponse(t *testing.T) {
	cases := map[string]string{
		"Here are the changes: adds logging": "adds logging",
		"Here is a summary: handles auth":    "handles auth",
		"SUMMARY: parses config":             "parses config",
		"  plain summary with no preamble  ": "plain summary with no preamble",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanResponse(in), "input %q", in)
	}
}

// recordingCompletion captures the user prompt of each call.
type recordingCompletion struct {
	response string
	record   func(user string)
}

func (r *recordingCompletion) ModelName() string { return "recording" }

func (r *recordingCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	r.record(userPrompt)
	return r.response, nil
}
