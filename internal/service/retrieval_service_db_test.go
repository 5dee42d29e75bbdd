package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crmforge/salesrag/internal/model"
	"github.com/crmforge/salesrag/internal/repo"
	"github.com/crmforge/salesrag/internal/service"
	"github.com/crmforge/salesrag/internal/testutil"
)

func TestSemanticSearchEndToEnd(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	seedEmbedding(t, conn, "interaction", uuid.New().String(), "pricing discussion", testVector(map[int]float32{0: 1}), "", now)
	seedEmbedding(t, conn, "interaction", uuid.New().String(), "unrelated note", testVector(map[int]float32{1: 1}), "", now)
	seedEmbedding(t, conn, "opportunity", uuid.New().String(), "deal summary", testVector(map[int]float32{0: 1, 1: 0.2}), "", now)

	embedder := &stubEmbedder{vec: testVector(map[int]float32{0: 1})}
	docs := repo.NewDocumentRepo(conn, testDimension)
	svc := service.NewRetrievalService(embedder, docs, time.Second, 10*time.Second)

	resp, err := svc.SemanticSearch(context.Background(), "pricing concerns", "", 0, 0.5)
	require.NoError(t, err)
	require.Equal(t, len(resp.Results), resp.Total)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "pricing discussion", resp.Results[0].Content)
	require.Equal(t, "pricing concerns", resp.Query)

	resp, err = svc.SemanticSearch(context.Background(), "pricing concerns", "opportunity", 0, 0.5)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, model.SourceTypeOpportunity, resp.Results[0].SourceType)
}

func TestSemanticSearchExplicitZeroThreshold(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	seedEmbedding(t, conn, "interaction", uuid.New().String(), "pricing discussion", testVector(map[int]float32{0: 1}), "", now)
	seedEmbedding(t, conn, "interaction", uuid.New().String(), "unrelated note", testVector(map[int]float32{1: 1}), "", now)

	embedder := &stubEmbedder{vec: testVector(map[int]float32{0: 1})}
	docs := repo.NewDocumentRepo(conn, testDimension)
	svc := service.NewRetrievalService(embedder, docs, time.Second, 10*time.Second)

	// Zero is a valid floor and admits orthogonal documents.
	resp, err := svc.SemanticSearch(context.Background(), "pricing concerns", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "pricing discussion", resp.Results[0].Content)
}

func TestContextualSearchCustomerScope(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "document_embeddings", "interactions", "opportunities", "customers")

	now := time.Now()
	target := uuid.New().String()
	other := uuid.New().String()
	seedEmbedding(t, conn, "customer", target, "target profile", testVector(map[int]float32{0: 1}), "", now)
	seedEmbedding(t, conn, "customer", other, "other profile", testVector(map[int]float32{0: 1}), "", now)

	embedder := &stubEmbedder{vec: testVector(map[int]float32{0: 1})}
	docs := repo.NewDocumentRepo(conn, testDimension)
	svc := service.NewRetrievalService(embedder, docs, time.Second, 10*time.Second)

	resp, err := svc.ContextualSearch(context.Background(), "profile", model.ContextFilter{CustomerID: target}, 0)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, target, resp.Results[0].SourceID)
}
