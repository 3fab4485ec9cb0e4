package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Projects ---

// CreateProject inserts a new project record.
func (s *PostgresStore) CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	query := `INSERT INTO projects (name, repo_url, credits)
	          VALUES ($1, $2, $3)
	          RETURNING id, name, repo_url, credits, created_at, deleted_at`

	var project domain.Project
	err := s.db.QueryRowContext(ctx, query, p.Name, p.RepoURL, p.Credits).Scan(
		&project.ID, &project.Name, &project.RepoURL, &project.Credits,
		&project.CreatedAt, &project.DeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// GetProject returns a project by id, soft-deleted ones included.
func (s *PostgresStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT id, name, repo_url, credits, created_at, deleted_at
	          FROM projects WHERE id = $1`

	var p domain.Project
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.RepoURL, &p.Credits, &p.CreatedAt, &p.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all active (not soft-deleted) projects.
func (s *PostgresStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	query := `SELECT id, name, repo_url, credits, created_at, deleted_at
	          FROM projects WHERE deleted_at IS NULL ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.RepoURL, &p.Credits, &p.CreatedAt, &p.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SoftDeleteProject marks a project deleted; its commits and embeddings stay.
func (s *PostgresStore) SoftDeleteProject(ctx context.Context, id string) error {
	query := `UPDATE projects SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrProjectNotFound
	}
	return nil
}

// --- Commits ---

const commitColumns = `id, project_id, commit_hash, message, author_name, author_avatar,
	authored_at, status, summary, retry_count, created_at, updated_at`

func scanCommit(row interface{ Scan(...any) error }) (*domain.Commit, error) {
	var c domain.Commit
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.Hash, &c.Message, &c.AuthorName, &c.AuthorAvatar,
		&c.AuthoredAt, &c.Status, &c.Summary, &c.RetryCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCommit returns the commit for (projectID, hash) or ErrCommitNotFound.
func (s *PostgresStore) GetCommit(ctx context.Context, projectID, hash string) (*domain.Commit, error) {
	query := `SELECT ` + commitColumns + ` FROM commits WHERE project_id = $1 AND commit_hash = $2`

	c, err := scanCommit(s.db.QueryRowContext(ctx, query, projectID, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrCommitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}
	return c, nil
}

// ListCommits returns a project's commits, newest first.
func (s *PostgresStore) ListCommits(ctx context.Context, projectID string) ([]domain.Commit, error) {
	query := `SELECT ` + commitColumns + ` FROM commits WHERE project_id = $1 ORDER BY authored_at DESC`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	defer rows.Close()

	var commits []domain.Commit
	for rows.Next() {
		c, err := scanCommit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, *c)
	}
	return commits, rows.Err()
}

// CreateCommit inserts a commit the first time it is observed. The unique
// (project_id, commit_hash) constraint keeps concurrent polls from creating
// duplicates; on conflict the existing row is returned unchanged.
func (s *PostgresStore) CreateCommit(ctx context.Context, c *domain.Commit) (*domain.Commit, error) {
	query := `INSERT INTO commits (project_id, commit_hash, message, author_name, author_avatar,
	                               authored_at, status, summary, retry_count)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          ON CONFLICT (project_id, commit_hash) DO UPDATE SET updated_at = NOW()
	          RETURNING ` + commitColumns

	row := s.db.QueryRowContext(ctx, query,
		c.ProjectID, c.Hash, c.Message, c.AuthorName, c.AuthorAvatar,
		c.AuthoredAt, c.Status, c.Summary, c.RetryCount,
	)
	created, err := scanCommit(row)
	if err != nil {
		return nil, fmt.Errorf("create commit: %w", err)
	}
	return created, nil
}

// UpdateCommitResult mutates a commit's processing outcome in place.
func (s *PostgresStore) UpdateCommitResult(ctx context.Context, id string, status domain.CommitStatus, summary string, retryCount int) error {
	query := `UPDATE commits SET status = $1, summary = $2, retry_count = $3, updated_at = NOW()
	          WHERE id = $4`
	res, err := s.db.ExecContext(ctx, query, status, summary, retryCount, id)
	if err != nil {
		return fmt.Errorf("update commit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrCommitNotFound
	}
	return nil
}
