package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/crmforge/salesrag/internal/model"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
	"github.com/crmforge/salesrag/internal/repo"
)

const (
	followUpNextStep  = "Schedule follow-up meeting to address concerns"
	highValueRisk     = "High-value deal - ensure executive sponsorship"
	wonDealStepsLimit = 5
	valueBandRatio    = 0.2
)

// SuggestionService turns an opportunity's live context plus the outcomes of
// comparable won deals into a ranked, structured suggestion. It emits only
// pre-declared advisory strings; no text is generated.
type SuggestionService struct {
	opportunities      *repo.OpportunityRepo
	interactions       *repo.InteractionRepo
	highValueThreshold float64
	recentWindowDays   int
	talkingPoints      map[string][]string
	storeTimeout       time.Duration
}

func NewSuggestionService(
	opportunities *repo.OpportunityRepo,
	interactions *repo.InteractionRepo,
	highValueThreshold float64,
	recentWindowDays int,
	talkingPoints map[string][]string,
	storeTimeout time.Duration,
) *SuggestionService {
	if recentWindowDays <= 0 {
		recentWindowDays = DefaultWindowDays
	}
	return &SuggestionService{
		opportunities:      opportunities,
		interactions:       interactions,
		highValueThreshold: highValueThreshold,
		recentWindowDays:   recentWindowDays,
		talkingPoints:      talkingPoints,
		storeTimeout:       storeTimeout,
	}
}

func (s *SuggestionService) Suggest(ctx context.Context, opportunityID string) (*model.Suggestion, error) {
	if strings.TrimSpace(opportunityID) == "" {
		return nil, fmt.Errorf("%w: opportunity id is required", appErr.ErrInvalidQuery)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("opportunity_id", opportunityID))

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	oc, err := s.opportunities.GetContext(sctx, opportunityID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -s.recentWindowDays)
	recent, err := s.interactions.ListByCustomer(sctx, oc.CustomerID, since, nil)
	if err != nil {
		logger.Error("failed to load recent interactions", zap.Error(err))
		return nil, err
	}

	suggestion := &model.Suggestion{
		NextSteps:     []string{},
		TalkingPoints: []string{},
		RiskFactors:   []string{},
	}

	hasNegative := false
	topicSeen := map[string]bool{}
	var topics []string
	for _, it := range recent {
		if it.Sentiment == model.SentimentNegative {
			hasNegative = true
		}
		for _, topic := range it.Topics {
			if !topicSeen[topic] {
				topicSeen[topic] = true
				topics = append(topics, topic)
			}
		}
	}
	if hasNegative {
		suggestion.NextSteps = append(suggestion.NextSteps, followUpNextStep)
	}
	sort.Strings(topics)
	for _, topic := range topics {
		if points, ok := s.talkingPoints[topic]; ok {
			suggestion.TalkingPoints = append(suggestion.TalkingPoints, points...)
		}
	}
	if oc.Value > s.highValueThreshold {
		suggestion.RiskFactors = append(suggestion.RiskFactors, highValueRisk)
	}

	lo := oc.Value * (1 - valueBandRatio)
	hi := oc.Value * (1 + valueBandRatio)
	wonSteps, err := s.opportunities.ListWonNextSteps(sctx, oc.ID, lo, hi, wonDealStepsLimit)
	if err != nil {
		logger.Error("failed to load won deal next steps", zap.Error(err))
		return nil, err
	}
	seen := map[string]bool{}
	for _, step := range suggestion.NextSteps {
		seen[step] = true
	}
	for _, step := range wonSteps {
		if seen[step] {
			continue
		}
		seen[step] = true
		suggestion.NextSteps = append(suggestion.NextSteps, step)
	}
	return suggestion, nil
}
