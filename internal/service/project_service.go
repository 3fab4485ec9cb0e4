package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/pipeline"
	"github.com/repomind-ai/repomind/internal/port"
)

// ProjectService manages project lifecycle and drives the ingestion
// pipeline: a full index + poll on creation, and opportunistic re-syncs on
// read access.
type ProjectService struct {
	projects port.ProjectStore
	commits  port.CommitStore
	loader   *pipeline.SnapshotLoader
	indexer  *pipeline.FileIndexer
	poller   *pipeline.CommitPoller
	credits  int

	// sync serializes ingestion per project id; concurrent triggers for
	// the same project collapse into one in-flight run.
	sync singleflight.Group
}

// NewProjectService creates a project service. initialCredits is the balance
// granted to every new project.
func NewProjectService(projects port.ProjectStore, commits port.CommitStore, loader *pipeline.SnapshotLoader, indexer *pipeline.FileIndexer, poller *pipeline.CommitPoller, initialCredits int) *ProjectService {
	return &ProjectService{
		projects: projects,
		commits:  commits,
		loader:   loader,
		indexer:  indexer,
		poller:   poller,
		credits:  initialCredits,
	}
}

// CreateProject registers a repository and kicks off the first ingestion in
// the background. The project is returned immediately; summaries and
// embeddings fill in as the pipeline progresses.
func (s *ProjectService) CreateProject(ctx context.Context, name, repoURL string) (*domain.Project, error) {
	project := &domain.Project{
		Name:    name,
		RepoURL: repoURL,
		Credits: s.credits,
	}
	if _, err := project.RepoRef(); err != nil {
		return nil, err
	}

	project, err := s.projects.CreateProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	go s.Resync(context.Background(), project.ID)

	return project, nil
}

// GetProject returns an active project by id.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Deleted() {
		return nil, port.ErrProjectNotFound
	}
	return project, nil
}

// ListProjects returns all active projects.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx)
}

// ListCommits returns a project's known commits and triggers an
// opportunistic background re-sync, so callers polling this endpoint see
// summaries converge over time.
func (s *ProjectService) ListCommits(ctx context.Context, projectID string) ([]domain.Commit, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	go s.Resync(context.Background(), project.ID)

	return s.commits.ListCommits(ctx, projectID)
}

// DeleteProject soft-deletes a project; ingestion treats it as inactive from
// then on. Its rows are kept.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	return s.projects.SoftDeleteProject(ctx, id)
}

// Resync runs one ingestion pass (snapshot index + commit poll) for a
// project. Runs for the same project are collapsed by a single-flight guard;
// the pipeline itself is best-effort, so Resync never reports item-level
// failures.
func (s *ProjectService) Resync(ctx context.Context, projectID string) {
	_, _, _ = s.sync.Do(projectID, func() (interface{}, error) {
		project, err := s.projects.GetProject(ctx, projectID)
		if err != nil {
			slog.Error("resync: load project failed", "project_id", projectID, "error", err)
			return nil, nil
		}
		if project.Deleted() {
			return nil, nil
		}

		repoRef, err := project.RepoRef()
		if err != nil {
			slog.Error("resync: bad repo url", "project_id", projectID, "error", err)
			return nil, nil
		}

		files, err := s.loader.Load(ctx, repoRef)
		if err != nil {
			slog.Error("resync: snapshot load failed", "project_id", projectID, "error", err)
		} else {
			s.indexer.Index(ctx, projectID, files)
		}

		s.poller.Poll(ctx, project)
		return nil, nil
	})
}
