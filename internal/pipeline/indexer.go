package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/port"
)

// IndexerConfig bounds how aggressively files are indexed.
type IndexerConfig struct {
	BatchSize  int           // files summarized+embedded per batch
	BatchDelay time.Duration // pause between batches when more remain
}

// FileIndexer turns newly loaded source files into persisted
// (summary, embedding) pairs, skipping files whose exact (path, content)
// already carries a non-empty cached summary.
type FileIndexer struct {
	files      port.FileStore
	credits    port.CreditLedger
	summarizer *Summarizer
	embedder   *Embedder
	cfg        IndexerConfig
}

// NewFileIndexer creates a file indexer.
func NewFileIndexer(files port.FileStore, credits port.CreditLedger, summarizer *Summarizer, embedder *Embedder, cfg IndexerConfig) *FileIndexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return &FileIndexer{files: files, credits: credits, summarizer: summarizer, embedder: embedder, cfg: cfg}
}

// Index processes files in input order, in fixed-size batches with a fixed
// inter-batch delay. One file's failure never aborts the run; the indexer is
// a best-effort background task and never returns an error to its caller.
func (ix *FileIndexer) Index(ctx context.Context, projectID string, files []domain.RepositoryFile) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("file indexing panicked", "project_id", projectID, "panic", r)
		}
	}()

	slog.Info("indexing files", "project_id", projectID, "files", len(files))

	for start := 0; start < len(files); start += ix.cfg.BatchSize {
		end := start + ix.cfg.BatchSize
		if end > len(files) {
			end = len(files)
		}

		if !ix.indexBatch(ctx, projectID, files[start:end]) {
			return
		}

		if end < len(files) && ix.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(ix.cfg.BatchDelay):
			}
		}
	}
}

// indexBatch processes one batch. It returns false when the run should stop
// entirely (out of credits, or context done); already-persisted results are
// untouched either way.
func (ix *FileIndexer) indexBatch(ctx context.Context, projectID string, batch []domain.RepositoryFile) bool {
	var pending []domain.RepositoryFile
	for _, f := range batch {
		cached, err := ix.files.HasCachedSummary(ctx, projectID, f.Path, f.Content)
		if err != nil {
			slog.Error("cache lookup failed", "project_id", projectID, "path", f.Path, "error", err)
			continue
		}
		if cached {
			continue
		}
		pending = append(pending, f)
	}
	if len(pending) == 0 {
		return true
	}

	// One credit covers one summarize+embed pair. A rejected charge stops
	// further paid work, but everything already charged in this batch is
	// still embedded and persisted below so no paid summary is lost.
	outOfCredits := false
	summaries := make([]string, 0, len(pending))
	charged := make([]domain.RepositoryFile, 0, len(pending))
	for _, f := range pending {
		if err := ix.credits.Charge(ctx, projectID, 1); err != nil {
			if errors.Is(err, port.ErrInsufficientCredits) {
				slog.Warn("out of credits, stopping file indexing", "project_id", projectID, "path", f.Path)
				outOfCredits = true
				break
			}
			slog.Error("credit charge failed", "project_id", projectID, "path", f.Path, "error", err)
			continue
		}

		summary := ix.summarizer.SummarizeFile(ctx, f.Path, f.Content)
		if summary == PlaceholderUnavailable {
			// Leave the file unindexed so the next run retries it.
			continue
		}
		charged = append(charged, f)
		summaries = append(summaries, summary)
	}
	if len(charged) == 0 {
		return !outOfCredits && ctx.Err() == nil
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, summaries)
	if err != nil {
		slog.Error("embedding batch failed", "project_id", projectID, "error", err)
		return ctx.Err() == nil
	}

	for i, f := range charged {
		if i >= len(vectors) || vectors[i] == nil {
			// Wrong-dimension or missing vector: drop the record rather
			// than persisting a file that can never be searched.
			slog.Warn("no usable embedding, skipping file", "project_id", projectID, "path", f.Path)
			continue
		}

		id, err := ix.files.UpsertFile(ctx, &domain.SourceFileEmbedding{
			ProjectID: projectID,
			FilePath:  f.Path,
			Content:   f.Content,
			Summary:   summaries[i],
		})
		if err != nil {
			slog.Error("upsert file failed", "project_id", projectID, "path", f.Path, "error", err)
			continue
		}

		// Best effort: a row without its vector beats aborting the batch.
		if err := ix.files.UpdateVector(ctx, id, vectors[i]); err != nil {
			slog.Error("vector write failed", "project_id", projectID, "path", f.Path, "error", err)
		}
	}

	return !outOfCredits && ctx.Err() == nil
}
