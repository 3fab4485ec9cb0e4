package pipeline

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/port"
)

// indexableExtensions is the allowlist of text/code file types worth
// summarizing and embedding.
var indexableExtensions = map[string]bool{
	".go": true, ".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".rs": true, ".java": true, ".rb": true, ".kt": true,
	".c": true, ".h": true, ".cpp": true, ".cs": true, ".php": true,
	".sql": true, ".sh": true, ".yaml": true, ".yml": true, ".toml": true,
	".json": true, ".md": true, ".html": true, ".css": true,
}

// skippedDirs are path prefixes never worth indexing.
var skippedDirs = []string{
	"vendor/", "node_modules/", "dist/", "build/", ".git/", "testdata/",
}

// skippedFiles are generated files whose content carries no meaning.
var skippedFiles = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
}

// SnapshotLoader fetches the current set of source files from the VCS host,
// filtered to relevant text/code file types.
type SnapshotLoader struct {
	host         port.VCSHost
	maxFileBytes int
}

// NewSnapshotLoader creates a loader; files larger than maxFileBytes are
// skipped.
func NewSnapshotLoader(host port.VCSHost, maxFileBytes int) *SnapshotLoader {
	return &SnapshotLoader{host: host, maxFileBytes: maxFileBytes}
}

// Load returns the indexable files of a repository's default branch. A file
// whose content cannot be fetched is logged and skipped, never fatal.
func (l *SnapshotLoader) Load(ctx context.Context, repoRef string) ([]domain.RepositoryFile, error) {
	paths, err := l.host.ListTree(ctx, repoRef)
	if err != nil {
		return nil, err
	}

	var files []domain.RepositoryFile
	for _, p := range paths {
		if !indexable(p) {
			continue
		}
		content, err := l.host.GetFileContent(ctx, repoRef, p)
		if err != nil {
			slog.Warn("skipping unreadable file", "repo", repoRef, "path", p, "error", err)
			continue
		}
		if l.maxFileBytes > 0 && len(content) > l.maxFileBytes {
			slog.Debug("skipping oversized file", "repo", repoRef, "path", p, "bytes", len(content))
			continue
		}
		files = append(files, domain.RepositoryFile{Path: p, Content: content})
	}

	slog.Info("loaded repository snapshot", "repo", repoRef, "files", len(files), "tree_entries", len(paths))
	return files, nil
}

// indexable applies the extension allowlist and directory/lock-file
// exclusions.
func indexable(filePath string) bool {
	for _, dir := range skippedDirs {
		if strings.HasPrefix(filePath, dir) || strings.Contains(filePath, "/"+dir) {
			return false
		}
	}
	if skippedFiles[path.Base(filePath)] {
		return false
	}
	return indexableExtensions[strings.ToLower(path.Ext(filePath))]
}
