package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/pkg/dbutil"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
)

type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	stmt, args, err := builder.BuildSelect("customers",
		map[string]interface{}{"id": id},
		[]string{"id", "name", "industry", "size", "created_at"})
	if err != nil {
		return nil, err
	}
	stmt, args = dbutil.Finalize(stmt, args)
	var c model.Customer
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&c.ID, &c.Name, &c.Industry, &c.Size, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: customer %s", appErr.ErrNotFound, id)
		}
		return nil, dbutil.ClassifyErr(err)
	}
	return &c, nil
}

// SimilarByEmbedding ranks other customers by vector similarity to the
// reference embedding.
func (r *CustomerRepo) SimilarByEmbedding(ctx context.Context, vector []float32, excludeID string, minSimilarity float64, limit int) ([]model.SimilarCustomer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", appErr.ErrInvalidQuery, limit)
	}
	const stmt = `
		SELECT
			c.id, c.name, c.industry, c.size, c.created_at,
			1 - (e.embedding <=> $1) AS similarity
		FROM document_embeddings e
		JOIN customers c ON c.id = e.source_id
		WHERE e.source_type = 'customer'
			AND e.source_id <> $2
			AND 1 - (e.embedding <=> $1) >= $3
		ORDER BY e.embedding <=> $1 ASC
		LIMIT $4
	`
	vec := pgvector.NewVector(vector)
	rows, err := r.db.QueryContext(ctx, stmt, vec, excludeID, minSimilarity, limit)
	if err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	defer rows.Close()

	var items []model.SimilarCustomer
	for rows.Next() {
		var sc model.SimilarCustomer
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Industry, &sc.Size, &sc.CreatedAt, &sc.Similarity); err != nil {
			return nil, err
		}
		items = append(items, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, dbutil.ClassifyErr(err)
	}
	return items, nil
}
