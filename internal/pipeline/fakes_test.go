package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/repomind-ai/repomind/internal/domain"
	"github.com/repomind-ai/repomind/internal/port"
)

// fakeHost is an in-memory port.VCSHost that counts network-equivalent calls.
type fakeHost struct {
	commits   []port.CommitInfo
	diffs     map[string]string
	listErr   error
	tree      []string
	contents  map[string]string
	listCalls int
	diffCalls int
}

func (h *fakeHost) ListRecentCommits(ctx context.Context, repoRef string, limit int) ([]port.CommitInfo, error) {
	h.listCalls++
	if h.listErr != nil {
		return nil, h.listErr
	}
	if len(h.commits) > limit {
		return h.commits[:limit], nil
	}
	return h.commits, nil
}

func (h *fakeHost) GetCommitDiff(ctx context.Context, repoRef, hash string) (string, error) {
	h.diffCalls++
	diff, ok := h.diffs[hash]
	if !ok {
		return "", fmt.Errorf("no diff for %s", hash)
	}
	return diff, nil
}

func (h *fakeHost) ListTree(ctx context.Context, repoRef string) ([]string, error) {
	return h.tree, nil
}

func (h *fakeHost) GetFileContent(ctx context.Context, repoRef, path string) (string, error) {
	content, ok := h.contents[path]
	if !ok {
		return "", port.ErrFileNotFound
	}
	return content, nil
}

// fakeCompletion scripts one outcome per call: errs[i] is returned for call
// i (nil means success). Calls beyond the script succeed.
type fakeCompletion struct {
	response string
	errs     []error
	calls    int
}

func (f *fakeCompletion) ModelName() string { return "fake-model" }

func (f *fakeCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	return f.response, nil
}

// fakeEmbedProvider returns vectors of dim for every input; indexes listed
// in badIndexes get a wrong-dimension vector instead.
type fakeEmbedProvider struct {
	dim        int
	badIndexes map[int]bool
	err        error
	calls      int
}

func (f *fakeEmbedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *fakeEmbedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		dim := f.dim
		if f.badIndexes[i] {
			dim = f.dim + 1
		}
		out[i] = make([]float32, dim)
	}
	return out, nil
}

// memCommitStore is an in-memory port.CommitStore keyed by (project, hash).
type memCommitStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Commit
	seq  int
}

func newMemCommitStore() *memCommitStore {
	return &memCommitStore{rows: make(map[string]*domain.Commit)}
}

func commitKey(projectID, hash string) string { return projectID + "|" + hash }

func (s *memCommitStore) GetCommit(ctx context.Context, projectID, hash string) (*domain.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[commitKey(projectID, hash)]
	if !ok {
		return nil, port.ErrCommitNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *memCommitStore) ListCommits(ctx context.Context, projectID string) ([]domain.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Commit
	for _, c := range s.rows {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memCommitStore) CreateCommit(ctx context.Context, c *domain.Commit) (*domain.Commit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := commitKey(c.ProjectID, c.Hash)
	if existing, ok := s.rows[key]; ok {
		copied := *existing
		return &copied, nil
	}
	s.seq++
	copied := *c
	copied.ID = fmt.Sprintf("commit-%d", s.seq)
	s.rows[key] = &copied
	result := copied
	return &result, nil
}

func (s *memCommitStore) UpdateCommitResult(ctx context.Context, id string, status domain.CommitStatus, summary string, retryCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.rows {
		if c.ID == id {
			c.Status = status
			c.Summary = summary
			c.RetryCount = retryCount
			return nil
		}
	}
	return port.ErrCommitNotFound
}

// memFileStore is an in-memory port.FileStore keyed by (project, path).
type memFileStore struct {
	mu           sync.Mutex
	rows         map[string]*domain.SourceFileEmbedding
	seq          int
	upserts      int
	vectorWrites int
	vectorErr    error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{rows: make(map[string]*domain.SourceFileEmbedding)}
}

func fileKey(projectID, path string) string { return projectID + "|" + path }

func (s *memFileStore) HasCachedSummary(ctx context.Context, projectID, path, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[fileKey(projectID, path)]
	return ok && row.Content == content && row.Summary != "", nil
}

func (s *memFileStore) UpsertFile(ctx context.Context, f *domain.SourceFileEmbedding) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	key := fileKey(f.ProjectID, f.FilePath)
	if existing, ok := s.rows[key]; ok {
		existing.Content = f.Content
		existing.Summary = f.Summary
		return existing.ID, nil
	}
	s.seq++
	copied := *f
	copied.ID = fmt.Sprintf("file-%d", s.seq)
	s.rows[key] = &copied
	return copied.ID, nil
}

func (s *memFileStore) UpdateVector(ctx context.Context, id string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectorErr != nil {
		return s.vectorErr
	}
	for _, row := range s.rows {
		if row.ID == id {
			row.Vector = vector
			s.vectorWrites++
			return nil
		}
	}
	return port.ErrFileNotFound
}

func (s *memFileStore) SearchSimilar(ctx context.Context, projectID string, query []float32, limit int, threshold float64) ([]domain.SimilarFile, error) {
	return nil, nil
}

// fakeLedger is an in-memory port.CreditLedger.
type fakeLedger struct {
	mu      sync.Mutex
	balance int
	charges int
}

func (l *fakeLedger) Charge(ctx context.Context, projectID string, amount int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance < amount {
		return port.ErrInsufficientCredits
	}
	l.balance -= amount
	l.charges++
	return nil
}

func (l *fakeLedger) Balance(ctx context.Context, projectID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}
