package vcshost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/repomind-ai/repomind/internal/port"
)

// GitHubClient implements port.VCSHost against the GitHub REST API.
type GitHubClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGitHubClient creates a GitHub-backed VCS host client. baseURL is usually
// https://api.github.com; token may be empty for public repositories.
func NewGitHubClient(baseURL, token string) *GitHubClient {
	return &GitHubClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// commitResponse mirrors the fields we care about from GitHub's commit list.
type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author struct {
		AvatarURL string `json:"avatar_url"`
	} `json:"author"`
}

// ListRecentCommits returns up to limit most recent commits, newest first.
func (g *GitHubClient) ListRecentCommits(ctx context.Context, repoRef string, limit int) ([]port.CommitInfo, error) {
	path := fmt.Sprintf("/repos/%s/commits?per_page=%d", repoRef, limit)
	body, err := g.get(ctx, path, "application/vnd.github+json")
	if err != nil {
		return nil, fmt.Errorf("list commits %s: %w", repoRef, err)
	}

	var raw []commitResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode commits %s: %w", repoRef, err)
	}

	commits := make([]port.CommitInfo, 0, len(raw))
	for _, c := range raw {
		commits = append(commits, port.CommitInfo{
			Hash:         c.SHA,
			Message:      c.Commit.Message,
			AuthorName:   c.Commit.Author.Name,
			AuthorAvatar: c.Author.AvatarURL,
			AuthoredAt:   c.Commit.Author.Date,
		})
	}
	return commits, nil
}

// GetCommitDiff returns the unified diff introduced by a commit, using
// GitHub's diff media type.
func (g *GitHubClient) GetCommitDiff(ctx context.Context, repoRef, hash string) (string, error) {
	path := fmt.Sprintf("/repos/%s/commits/%s", repoRef, hash)
	body, err := g.get(ctx, path, "application/vnd.github.diff")
	if err != nil {
		return "", fmt.Errorf("get diff %s@%s: %w", repoRef, hash, err)
	}
	return string(body), nil
}

// ListTree returns all file paths on the default branch.
func (g *GitHubClient) ListTree(ctx context.Context, repoRef string) ([]string, error) {
	path := fmt.Sprintf("/repos/%s/git/trees/HEAD?recursive=1", repoRef)
	body, err := g.get(ctx, path, "application/vnd.github+json")
	if err != nil {
		return nil, fmt.Errorf("list tree %s: %w", repoRef, err)
	}

	var raw struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode tree %s: %w", repoRef, err)
	}

	var paths []string
	for _, entry := range raw.Tree {
		if entry.Type == "blob" {
			paths = append(paths, entry.Path)
		}
	}
	return paths, nil
}

// GetFileContent returns a file's raw content on the default branch.
func (g *GitHubClient) GetFileContent(ctx context.Context, repoRef, path string) (string, error) {
	escaped := (&url.URL{Path: path}).EscapedPath()
	body, err := g.get(ctx, fmt.Sprintf("/repos/%s/contents/%s", repoRef, escaped), "application/vnd.github.raw+json")
	if err != nil {
		return "", fmt.Errorf("get file %s:%s: %w", repoRef, path, err)
	}
	return string(body), nil
}

// get performs an authenticated GET, classifying GitHub's two throttling
// shapes (429, and 403 with an exhausted rate-limit quota) as RateLimitError.
func (g *GitHubClient) get(ctx context.Context, path, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rateLimited := resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0")
	if rateLimited {
		body, _ := io.ReadAll(resp.Body)
		return nil, &port.RateLimitError{
			Service: "github",
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", string(body)),
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, port.ErrFileNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
