package domain

import (
	"strings"
	"time"
)

// CommitStatus is the processing state of a commit's summary.
type CommitStatus string

// Commit processing states.
const (
	CommitStatusGenerating   CommitStatus = "generating"
	CommitStatusRetryPending CommitStatus = "retry_pending"
	CommitStatusFailed       CommitStatus = "failed"
	CommitStatusNoChanges    CommitStatus = "no_changes"
	CommitStatusCompleted    CommitStatus = "completed"
)

// MaxSummaryRetries bounds how often a commit summary is re-attempted.
// Once RetryCount reaches this value the commit is failed for good.
const MaxSummaryRetries = 3

// Commit represents one VCS commit known to the system, together with the
// state of its AI-generated summary.
type Commit struct {
	ID           string       `json:"id"            db:"id"`
	ProjectID    string       `json:"project_id"    db:"project_id"`
	Hash         string       `json:"hash"          db:"commit_hash"`
	Message      string       `json:"message"       db:"message"`
	AuthorName   string       `json:"author_name"   db:"author_name"`
	AuthorAvatar string       `json:"author_avatar" db:"author_avatar"`
	AuthoredAt   time.Time    `json:"authored_at"   db:"authored_at"`
	Status       CommitStatus `json:"status"        db:"status"`
	Summary      string       `json:"summary"       db:"summary"`
	RetryCount   int          `json:"retry_count"   db:"retry_count"`
	CreatedAt    time.Time    `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"    db:"updated_at"`
}

// placeholderMarkers identify summary texts written while a commit is still
// in flight or after it failed. Rows imported from older ingesters carry no
// status column, only such marker text, so classification falls back to it.
var placeholderMarkers = []string{
	"generating",
	"pending",
	"processing",
	"failed",
	"unavailable",
}

// hasPlaceholderSummary reports whether the stored summary text is empty or
// one of the known in-progress/failed markers.
func (c *Commit) hasPlaceholderSummary() bool {
	s := strings.ToLower(strings.TrimSpace(c.Summary))
	if s == "" {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Eligible reports whether the poller should still attempt to summarize this
// commit. Terminal states are skipped, as are commits that exhausted their
// retries and legacy rows whose summary text is already a real summary.
func (c *Commit) Eligible() bool {
	switch c.Status {
	case CommitStatusCompleted, CommitStatusNoChanges, CommitStatusFailed:
		return false
	}
	if c.RetryCount >= MaxSummaryRetries {
		return false
	}
	return c.hasPlaceholderSummary()
}
