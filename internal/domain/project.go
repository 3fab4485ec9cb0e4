package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project represents a tracked Git repository whose history and contents
// are summarized and indexed for question answering.
type Project struct {
	ID        string     `json:"id"         db:"id"`
	Name      string     `json:"name"       db:"name"`
	RepoURL   string     `json:"repo_url"   db:"repo_url"`
	Credits   int        `json:"credits"    db:"credits"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Deleted reports whether the project has been soft-deleted.
// Ingestion treats deleted projects as inactive.
func (p *Project) Deleted() bool {
	return p.DeletedAt != nil
}

// RepoRef derives the "owner/name" reference the VCS host API expects
// from the project's repository URL.
func (p *Project) RepoRef() (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(p.RepoURL, "/"), ".git")

	// Accept both https://github.com/owner/name and owner/name forms.
	if idx := strings.Index(trimmed, "://"); idx >= 0 {
		trimmed = trimmed[idx+3:]
		if slash := strings.Index(trimmed, "/"); slash >= 0 {
			trimmed = trimmed[slash+1:]
		}
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("cannot derive owner/name from repo url %q", p.RepoURL)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}
