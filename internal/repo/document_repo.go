package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/pkg/dbutil"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
	"github.com/crmforge/salesrag/internal/query"
)

// DocumentRepo is the similarity index client over document_embeddings.
// Read-only: the ingestion pipeline owns writes to the index.
type DocumentRepo struct {
	db  *sql.DB
	dim int
}

func NewDocumentRepo(db *sql.DB, dimension int) *DocumentRepo {
	return &DocumentRepo{db: db, dim: dimension}
}

func (r *DocumentRepo) Dimension() int {
	return r.dim
}

// SimilaritySearch returns at most limit documents matching pred, scored by
// 1 - cosine_distance, ordered by similarity descending with ties broken by
// most recent created_at. Input validation happens before any I/O.
func (r *DocumentRepo) SimilaritySearch(ctx context.Context, vector []float32, pred *query.Predicate, limit int) ([]model.ScoredDocument, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", appErr.ErrInvalidQuery, limit)
	}
	if r.dim > 0 && len(vector) != r.dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d", appErr.ErrInvalidQuery, len(vector), r.dim)
	}
	if pred == nil {
		pred = query.NewPredicate()
	}
	vec := pgvector.NewVector(vector)
	where, whereArgs := pred.SQL("$1", 2)
	args := make([]interface{}, 0, len(whereArgs)+2)
	args = append(args, vec)
	args = append(args, whereArgs...)
	args = append(args, limit)

	// Ordering by the distance operator instead of the alias keeps the
	// ivfflat index usable; created_at breaks exact-score ties.
	stmt := fmt.Sprintf(`
		SELECT
			source_type, source_id, content, metadata, created_at,
			1 - (embedding <=> $1) AS similarity
		FROM document_embeddings
		WHERE %s
		ORDER BY embedding <=> $1 ASC, created_at DESC
		LIMIT $%d`, where, len(args))

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	results := make([]model.ScoredDocument, 0, limit)
	for rows.Next() {
		var doc model.ScoredDocument
		var metadata []byte
		if err := rows.Scan(&doc.SourceType, &doc.SourceID, &doc.Content, &metadata, &doc.CreatedAt, &doc.Similarity); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("decode document metadata: %w", err)
			}
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return results, nil
}

// GetEmbeddingBySource fetches the stored vector for one source row,
// used as the reference point for similar-entity lookups.
func (r *DocumentRepo) GetEmbeddingBySource(ctx context.Context, sourceType, sourceID string) ([]float32, error) {
	const stmt = `
		SELECT embedding
		FROM document_embeddings
		WHERE source_type = $1 AND source_id = $2
	`
	var vec pgvector.Vector
	if err := r.db.QueryRowContext(ctx, stmt, sourceType, sourceID).Scan(&vec); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: no document for %s %s", appErr.ErrNotFound, sourceType, sourceID)
		}
		return nil, dbutil.ClassifyErr(err)
	}
	return vec.Slice(), nil
}
