package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/crmforge/salesrag/internal/ai"
	"github.com/crmforge/salesrag/internal/model"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
	"github.com/crmforge/salesrag/internal/query"
	"github.com/crmforge/salesrag/internal/repo"
)

const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 50
)

// RetrievalService is the unified search entry point: embed the query text,
// compose the predicate, run the similarity query. It performs no writes and
// no internal retries; upstream failures surface to the caller as-is.
type RetrievalService struct {
	embedder     ai.IEmbedder
	docs         *repo.DocumentRepo
	embedTimeout time.Duration
	storeTimeout time.Duration
}

func NewRetrievalService(embedder ai.IEmbedder, docs *repo.DocumentRepo, embedTimeout, storeTimeout time.Duration) *RetrievalService {
	return &RetrievalService{
		embedder:     embedder,
		docs:         docs,
		embedTimeout: embedTimeout,
		storeTimeout: storeTimeout,
	}
}

// SemanticSearch searches the whole index, optionally restricted to one
// source type.
func (s *RetrievalService) SemanticSearch(ctx context.Context, queryText string, sourceType string, limit int, minSimilarity float64) (*model.SearchResponse, error) {
	filter := model.ContextFilter{MinSimilarity: &minSimilarity}
	if sourceType != "" {
		filter.SourceTypes = []string{sourceType}
	}
	return s.search(ctx, queryText, filter, limit)
}

// ContextualSearch searches with the full structured filter.
func (s *RetrievalService) ContextualSearch(ctx context.Context, queryText string, filter model.ContextFilter, limit int) (*model.SearchResponse, error) {
	return s.search(ctx, queryText, filter, limit)
}

func (s *RetrievalService) search(ctx context.Context, queryText string, filter model.ContextFilter, limit int) (*model.SearchResponse, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("query", queryText))
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query text is required", appErr.ErrInvalidQuery)
	}
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, fmt.Errorf("%w: limit %d out of [1,%d]", appErr.ErrInvalidQuery, limit, MaxSearchLimit)
	}

	// Compose before embedding so invalid input never reaches a provider.
	pred, err := query.Compose(filter)
	if err != nil {
		return nil, err
	}

	ectx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	vector, err := s.embedder.Embed(ectx, queryText, ai.TaskTypeQuery)
	if err != nil {
		if ectx.Err() == context.DeadlineExceeded {
			logger.Error("embedding call timed out", zap.Duration("timeout", s.embedTimeout))
			return nil, fmt.Errorf("%w: embedding call exceeded deadline", appErr.ErrTimeout)
		}
		logger.Error("failed to embed query", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrEmbeddingUnavailable, err)
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	results, err := s.docs.SimilaritySearch(sctx, vector, pred, limit)
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return nil, err
	}
	if results == nil {
		results = []model.ScoredDocument{}
	}
	// Total reflects what was actually returned, never a corpus estimate.
	return &model.SearchResponse{
		Results: results,
		Total:   len(results),
		Query:   queryText,
	}, nil
}
