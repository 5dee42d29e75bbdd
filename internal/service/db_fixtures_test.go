package service_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const testDimension = 384

func testVector(components map[int]float32) []float32 {
	vec := make([]float32, testDimension)
	for idx, value := range components {
		vec[idx] = value
	}
	return vec
}

func seedCustomer(t *testing.T, conn *sql.DB, industry string) string {
	t.Helper()
	id := uuid.New().String()
	if _, err := conn.Exec(
		`INSERT INTO customers (id, name, industry, size) VALUES ($1, $2, $3, 'mid')`,
		id, "customer-"+id[:8], industry,
	); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return id
}

func seedOpportunity(t *testing.T, conn *sql.DB, customerID, status string, value float64) string {
	t.Helper()
	id := uuid.New().String()
	if _, err := conn.Exec(
		`INSERT INTO opportunities (id, customer_id, status, value) VALUES ($1, $2, $3, $4)`,
		id, customerID, status, value,
	); err != nil {
		t.Fatalf("seed opportunity: %v", err)
	}
	return id
}

func seedInteraction(t *testing.T, conn *sql.DB, customerID, typ, notes, nextSteps, sentiment string, topics []string, createdAt time.Time) string {
	t.Helper()
	id := uuid.New().String()
	if _, err := conn.Exec(
		`INSERT INTO interactions (id, customer_id, type, notes, next_steps, sentiment, topics, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, customerID, typ, notes, nextSteps, sentiment, pq.Array(topics), createdAt,
	); err != nil {
		t.Fatalf("seed interaction: %v", err)
	}
	return id
}

func seedEmbedding(t *testing.T, conn *sql.DB, sourceType, sourceID, content string, vec []float32, metadata string, createdAt time.Time) {
	t.Helper()
	if metadata == "" {
		metadata = "{}"
	}
	if _, err := conn.Exec(
		`INSERT INTO document_embeddings (source_type, source_id, content, embedding, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sourceType, sourceID, content, pgvector.NewVector(vec), metadata, createdAt,
	); err != nil {
		t.Fatalf("seed embedding: %v", err)
	}
}
