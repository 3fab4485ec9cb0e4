package port

import (
	"context"
	"time"
)

// CommitInfo is a lightweight representation of a commit as reported by the
// VCS host's API.
type CommitInfo struct {
	Hash         string    `json:"hash"`
	Message      string    `json:"message"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	AuthoredAt   time.Time `json:"authored_at"`
}

// VCSHost abstracts the version-control hosting API (GitHub, GitLab, ...).
// repoRef is the host-specific "owner/name" reference.
type VCSHost interface {
	// ListRecentCommits returns up to limit most recent commits,
	// newest first.
	ListRecentCommits(ctx context.Context, repoRef string, limit int) ([]CommitInfo, error)

	// GetCommitDiff returns the unified diff introduced by a commit.
	GetCommitDiff(ctx context.Context, repoRef, hash string) (string, error)

	// ListTree returns all file paths in the repository's default branch.
	ListTree(ctx context.Context, repoRef string) ([]string, error)

	// GetFileContent returns the raw content of one file.
	GetFileContent(ctx context.Context, repoRef, path string) (string, error)
}
