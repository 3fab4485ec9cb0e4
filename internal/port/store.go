package port

import (
	"context"

	"github.com/repomind-ai/repomind/internal/domain"
)

// ProjectStore is the persistence contract for projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error)

	// GetProject returns a project by id, including soft-deleted ones;
	// callers decide whether a deleted project is acceptable.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	ListProjects(ctx context.Context) ([]domain.Project, error)

	// SoftDeleteProject marks a project deleted without removing its rows.
	SoftDeleteProject(ctx context.Context, id string) error
}

// CommitStore is the persistence contract for commit summary state.
// Writes are keyed by (project, hash); at most one row exists per pair.
type CommitStore interface {
	// GetCommit returns the commit for (projectID, hash) or ErrCommitNotFound.
	GetCommit(ctx context.Context, projectID, hash string) (*domain.Commit, error)

	ListCommits(ctx context.Context, projectID string) ([]domain.Commit, error)

	CreateCommit(ctx context.Context, c *domain.Commit) (*domain.Commit, error)

	// UpdateCommitResult mutates a commit's processing outcome in place.
	UpdateCommitResult(ctx context.Context, id string, status domain.CommitStatus, summary string, retryCount int) error
}

// FileStore is the persistence contract for indexed source files and their
// embedding vectors.
type FileStore interface {
	// HasCachedSummary reports whether (projectID, path, exact content)
	// already has a non-empty summary stored.
	HasCachedSummary(ctx context.Context, projectID, path, content string) (bool, error)

	// UpsertFile creates or updates the text part of a file record and
	// returns the row id. The vector is written separately.
	UpsertFile(ctx context.Context, f *domain.SourceFileEmbedding) (string, error)

	// UpdateVector attaches an embedding vector to an existing row.
	UpdateVector(ctx context.Context, id string, vector []float32) error

	// SearchSimilar returns up to limit files whose cosine similarity to
	// the query vector exceeds threshold, ordered by similarity descending.
	SearchSimilar(ctx context.Context, projectID string, query []float32, limit int, threshold float64) ([]domain.SimilarFile, error)
}

// CreditLedger meters paid AI operations. Charge rejects with
// ErrInsufficientCredits when the balance cannot cover the operation;
// the caller must then skip the paid step without touching completed work.
type CreditLedger interface {
	Charge(ctx context.Context, projectID string, amount int) error
	Balance(ctx context.Context, projectID string) (int, error)
}
