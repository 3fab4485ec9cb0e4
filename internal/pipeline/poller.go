package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/port"
)

// PollerConfig bounds one poll cycle's external load.
type PollerConfig struct {
	PageSize     int // commits fetched from the host
	Window       int // commits of the page actually considered
	MaxPerCycle  int // eligible commits summarized per cycle
	MinDiffChars int // diffs below this are recorded as no-change
}

// Failure messages stored alongside non-success states. They double as
// placeholder markers for the legacy text-based classification.
const (
	summaryGenerating  = "Generating summary..."
	summaryRetrying    = "Summary generation failed, retry pending."
	summaryFailed      = "Summary generation failed."
	summaryRateLimited = "Summary generation failed: rate limit exhausted."
)

// CommitPoller discovers new commits for a project, fetches their diffs, and
// drives summary generation through a per-commit retry state machine.
type CommitPoller struct {
	host       port.VCSHost
	commits    port.CommitStore
	summarizer *Summarizer
	credits    port.CreditLedger
	throttle   *Throttle
	cfg        PollerConfig
}

// NewCommitPoller creates a commit poller. throttle spaces successive
// summarized commits apart to respect the completion service's quota even on
// the success path.
func NewCommitPoller(host port.VCSHost, commits port.CommitStore, summarizer *Summarizer, credits port.CreditLedger, throttle *Throttle, cfg PollerConfig) *CommitPoller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.Window <= 0 {
		cfg.Window = 15
	}
	if cfg.MaxPerCycle <= 0 {
		cfg.MaxPerCycle = 3
	}
	if cfg.MinDiffChars <= 0 {
		cfg.MinDiffChars = 50
	}
	return &CommitPoller{host: host, commits: commits, summarizer: summarizer, credits: credits, throttle: throttle, cfg: cfg}
}

// Poll runs one cycle: fetch the most recent page of commits, register the
// ones never seen before, and summarize up to MaxPerCycle eligible ones.
// Poll is a best-effort background task; it isolates per-commit failures and
// never returns an error or panics to the caller. The returned slice holds
// the commits touched this cycle.
func (p *CommitPoller) Poll(ctx context.Context, project *domain.Project) (touched []domain.Commit) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("commit poll panicked", "project_id", project.ID, "panic", r)
			touched = nil
		}
	}()

	if project.Deleted() {
		slog.Debug("skipping poll for deleted project", "project_id", project.ID)
		return nil
	}

	repoRef, err := project.RepoRef()
	if err != nil {
		slog.Error("cannot poll project", "project_id", project.ID, "error", err)
		return nil
	}

	infos, err := p.host.ListRecentCommits(ctx, repoRef, p.cfg.PageSize)
	if err != nil {
		slog.Error("list commits failed", "project_id", project.ID, "repo", repoRef, "error", err)
		return nil
	}
	if len(infos) > p.cfg.Window {
		infos = infos[:p.cfg.Window]
	}

	processed := 0
	for _, info := range infos {
		if processed >= p.cfg.MaxPerCycle || ctx.Err() != nil {
			break
		}

		commit, err := p.lookupOrCreate(ctx, project.ID, info)
		if err != nil {
			slog.Error("commit lookup failed", "project_id", project.ID, "hash", info.Hash, "error", err)
			continue
		}
		if !commit.Eligible() {
			continue
		}

		processed++
		if err := p.throttle.Wait(ctx); err != nil {
			break
		}
		ok := p.processCommit(ctx, repoRef, commit)
		touched = append(touched, *commit)
		if !ok {
			break
		}
	}

	if processed > 0 {
		slog.Info("poll cycle complete", "project_id", project.ID, "processed", processed)
	}
	return touched
}

// lookupOrCreate returns the stored commit for info, creating it in the
// Generating state the first time it is observed.
func (p *CommitPoller) lookupOrCreate(ctx context.Context, projectID string, info port.CommitInfo) (*domain.Commit, error) {
	commit, err := p.commits.GetCommit(ctx, projectID, info.Hash)
	if err == nil {
		return commit, nil
	}
	if !errors.Is(err, port.ErrCommitNotFound) {
		return nil, err
	}

	return p.commits.CreateCommit(ctx, &domain.Commit{
		ProjectID:    projectID,
		Hash:         info.Hash,
		Message:      info.Message,
		AuthorName:   info.AuthorName,
		AuthorAvatar: info.AuthorAvatar,
		AuthoredAt:   info.AuthoredAt,
		Status:       domain.CommitStatusGenerating,
		Summary:      summaryGenerating,
		RetryCount:   0,
	})
}

// processCommit fetches the diff and runs one summarization attempt,
// mutating the commit according to the outcome. The return value is false
// when the whole cycle should stop (credit balance exhausted); the commit is
// then left untouched so a later run can resume it.
func (p *CommitPoller) processCommit(ctx context.Context, repoRef string, commit *domain.Commit) bool {
	diff, err := p.host.GetCommitDiff(ctx, repoRef, commit.Hash)
	if err != nil {
		p.recordFailure(ctx, commit, err)
		return true
	}

	if len(strings.TrimSpace(diff)) < p.cfg.MinDiffChars {
		p.transition(ctx, commit, domain.CommitStatusNoChanges, PlaceholderNoChanges, 0)
		return true
	}

	// Summarization is metered; a rejected charge stops the paid part of
	// the cycle without recording anything against the commit.
	if err := p.credits.Charge(ctx, commit.ProjectID, 1); err != nil {
		if errors.Is(err, port.ErrInsufficientCredits) {
			slog.Warn("out of credits, stopping commit poll", "project_id", commit.ProjectID, "hash", commit.Hash)
			return false
		}
		slog.Error("credit charge failed", "project_id", commit.ProjectID, "hash", commit.Hash, "error", err)
		return true
	}

	summary, err := p.summarizer.SummarizeDiff(ctx, diff)
	if err != nil {
		p.recordFailure(ctx, commit, err)
		return true
	}

	p.transition(ctx, commit, domain.CommitStatusCompleted, summary, 0)
	return true
}

// recordFailure applies the failure half of the state machine. A permanent
// rate-limit signal (quota exhaustion) fails the commit for good with the
// retry counter forced to its cap; ordinary rate limiting that survived the
// backoff retries, like any other failure, counts as one transient attempt
// until the retry budget runs out.
func (p *CommitPoller) recordFailure(ctx context.Context, commit *domain.Commit, cause error) {
	if port.IsPermanentRateLimit(cause) {
		slog.Warn("commit summary quota exhausted, failing permanently",
			"project_id", commit.ProjectID, "hash", commit.Hash, "error", cause)
		p.transition(ctx, commit, domain.CommitStatusFailed, summaryRateLimited, domain.MaxSummaryRetries)
		return
	}

	retries := commit.RetryCount + 1
	if retries >= domain.MaxSummaryRetries {
		slog.Warn("commit summary retries exhausted",
			"project_id", commit.ProjectID, "hash", commit.Hash, "error", cause)
		p.transition(ctx, commit, domain.CommitStatusFailed, summaryFailed, retries)
		return
	}

	slog.Warn("commit summary failed, will retry",
		"project_id", commit.ProjectID, "hash", commit.Hash, "retry", retries, "error", cause)
	p.transition(ctx, commit, domain.CommitStatusRetryPending, summaryRetrying, retries)
}

// transition persists a state change and mirrors it on the in-memory commit.
func (p *CommitPoller) transition(ctx context.Context, commit *domain.Commit, status domain.CommitStatus, summary string, retries int) {
	if err := p.commits.UpdateCommitResult(ctx, commit.ID, status, summary, retries); err != nil {
		slog.Error("commit update failed",
			"project_id", commit.ProjectID, "hash", commit.Hash, "status", status, "error", err)
		return
	}
	commit.Status = status
	commit.Summary = summary
	commit.RetryCount = retries
}
