package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/repomind-ai/repomind/internal/domain"
)

// VectorStore handles pgvector-specific operations for file embeddings.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// HasCachedSummary reports whether (projectID, path, exact content) already
// has a non-empty summary stored. This is the dedup key that short-circuits
// re-summarization and re-embedding.
func (v *VectorStore) HasCachedSummary(ctx context.Context, projectID, path, content string) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM source_file_embeddings
	            WHERE project_id = $1 AND file_path = $2 AND content = $3 AND summary <> ''
	          )`

	var exists bool
	if err := v.store.db.QueryRowContext(ctx, query, projectID, path, content).Scan(&exists); err != nil {
		return false, fmt.Errorf("check cached summary: %w", err)
	}
	return exists, nil
}

// UpsertFile creates or updates the text part of a file record, keyed by
// (project_id, file_path), and returns the row id. The vector is written
// separately by UpdateVector so a failed vector write cannot lose the text.
func (v *VectorStore) UpsertFile(ctx context.Context, f *domain.SourceFileEmbedding) (string, error) {
	query := `INSERT INTO source_file_embeddings (project_id, file_path, content, summary)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (project_id, file_path) DO UPDATE SET
	              content = EXCLUDED.content,
	              summary = EXCLUDED.summary,
	              updated_at = NOW()
	          RETURNING id`

	var id string
	err := v.store.db.QueryRowContext(ctx, query, f.ProjectID, f.FilePath, f.Content, f.Summary).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert file: %w", err)
	}
	return id, nil
}

// UpdateVector attaches an embedding vector to an existing row.
func (v *VectorStore) UpdateVector(ctx context.Context, id string, vector []float32) error {
	query := `UPDATE source_file_embeddings SET vector = $1::vector, updated_at = NOW() WHERE id = $2`
	if _, err := v.store.db.ExecContext(ctx, query, vectorToString(vector), id); err != nil {
		return fmt.Errorf("update vector: %w", err)
	}
	return nil
}

// SearchSimilar performs a cosine similarity search over a project's file
// embeddings, returning up to limit rows above threshold, best match first.
func (v *VectorStore) SearchSimilar(ctx context.Context, projectID string, queryVector []float32, limit int, threshold float64) ([]domain.SimilarFile, error) {
	vectorStr := vectorToString(queryVector)
	query := `SELECT id, project_id, file_path, content, summary, created_at, updated_at,
	                 1 - (vector <=> $1::vector) AS similarity
	          FROM source_file_embeddings
	          WHERE project_id = $2
	            AND vector IS NOT NULL
	            AND 1 - (vector <=> $1::vector) > $3
	          ORDER BY vector <=> $1::vector
	          LIMIT $4`

	rows, err := v.store.db.QueryContext(ctx, query, vectorStr, projectID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.SimilarFile
	for rows.Next() {
		var sf domain.SimilarFile
		if err := rows.Scan(
			&sf.ID, &sf.ProjectID, &sf.FilePath, &sf.Content, &sf.Summary,
			&sf.CreatedAt, &sf.UpdatedAt, &sf.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		results = append(results, sf)
	}
	return results, rows.Err()
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
