package domain

import "time"

// RepositoryFile is one source file as loaded from the VCS host.
type RepositoryFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// SourceFileEmbedding represents one file's latest indexed content: its raw
// text, the AI-generated summary, and the summary's embedding vector.
type SourceFileEmbedding struct {
	ID        string    `json:"id"         db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	FilePath  string    `json:"file_path"  db:"file_path"`
	Content   string    `json:"content"    db:"content"`
	Summary   string    `json:"summary"    db:"summary"`
	Vector    []float32 `json:"-"          db:"vector"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SimilarFile is returned by similarity search, including the cosine
// similarity of the stored vector to the query vector.
type SimilarFile struct {
	SourceFileEmbedding
	Similarity float64 `json:"similarity"`
}
