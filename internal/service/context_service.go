package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/crmforge/salesrag/internal/model"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
	"github.com/crmforge/salesrag/internal/repo"
)

const (
	recentInteractionCount = 5
	DefaultSimilarLimit    = 5
	MaxSimilarLimit        = 20
	DefaultHistoryDays     = 30
	MaxHistoryDays         = 365
)

// ContextService assembles per-customer views: company profile with recent
// activity, embedding-based similar customers, and conversation history.
type ContextService struct {
	customers     *repo.CustomerRepo
	interactions  *repo.InteractionRepo
	opportunities *repo.OpportunityRepo
	docs          *repo.DocumentRepo
	storeTimeout  time.Duration
}

func NewContextService(
	customers *repo.CustomerRepo,
	interactions *repo.InteractionRepo,
	opportunities *repo.OpportunityRepo,
	docs *repo.DocumentRepo,
	storeTimeout time.Duration,
) *ContextService {
	return &ContextService{
		customers:     customers,
		interactions:  interactions,
		opportunities: opportunities,
		docs:          docs,
		storeTimeout:  storeTimeout,
	}
}

// CustomerContext returns the company profile, its latest interactions with
// sales person names, and its in-flight opportunities.
func (s *ContextService) CustomerContext(ctx context.Context, customerID string) (*model.CustomerContext, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", appErr.ErrInvalidQuery)
	}
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	customer, err := s.customers.GetByID(sctx, customerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.interactions.ListRecentDetail(sctx, customerID, recentInteractionCount)
	if err != nil {
		logutil.GetLogger(ctx).Error("failed to load recent interactions", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	active, err := s.opportunities.ListActiveByCustomer(sctx, customerID)
	if err != nil {
		logutil.GetLogger(ctx).Error("failed to load active opportunities", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	if recent == nil {
		recent = []model.InteractionDetail{}
	}
	if active == nil {
		active = []model.Opportunity{}
	}
	return &model.CustomerContext{
		CompanyInfo:         *customer,
		RecentInteractions:  recent,
		ActiveOpportunities: active,
	}, nil
}

// SimilarCustomers ranks other customers by similarity to the reference
// customer's document embedding.
func (s *ContextService) SimilarCustomers(ctx context.Context, customerID string, limit int, minSimilarity float64) ([]model.SimilarCustomer, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", appErr.ErrInvalidQuery)
	}
	if limit == 0 {
		limit = DefaultSimilarLimit
	}
	if limit < 1 || limit > MaxSimilarLimit {
		return nil, fmt.Errorf("%w: limit %d out of [1,%d]", appErr.ErrInvalidQuery, limit, MaxSimilarLimit)
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("%w: min_similarity %v out of [0,1]", appErr.ErrInvalidQuery, minSimilarity)
	}
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	reference, err := s.docs.GetEmbeddingBySource(sctx, model.SourceTypeCustomer, customerID)
	if err != nil {
		return nil, err
	}
	similar, err := s.customers.SimilarByEmbedding(sctx, reference, customerID, minSimilarity, limit)
	if err != nil {
		logutil.GetLogger(ctx).Error("similar customer search failed", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	if similar == nil {
		similar = []model.SimilarCustomer{}
	}
	return similar, nil
}

// ConversationHistory lists a customer's interactions inside the lookback
// window in chronological order, optionally filtered by interaction types.
func (s *ContextService) ConversationHistory(ctx context.Context, customerID string, days int, types []string) ([]model.Interaction, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", appErr.ErrInvalidQuery)
	}
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 1 || days > MaxHistoryDays {
		return nil, fmt.Errorf("%w: days %d out of [1,%d]", appErr.ErrInvalidQuery, days, MaxHistoryDays)
	}
	since := time.Now().AddDate(0, 0, -days)

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	history, err := s.interactions.ListByCustomer(sctx, customerID, since, types)
	if err != nil {
		logutil.GetLogger(ctx).Error("failed to load conversation history", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	if history == nil {
		history = []model.Interaction{}
	}
	return history, nil
}
