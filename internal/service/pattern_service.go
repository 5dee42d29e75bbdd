package service

import (
	"context"
	"fmt"
	"math"
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
	DefaultMinSuccessRate = 0.6
	DefaultWindowDays     = 90
	DefaultMinMentions    = 2
)

// PatternService mines historical interaction/opportunity cohorts into
// ranked patterns. All aggregation runs inside the store; the service only
// rolls up the already-grouped rows.
type PatternService struct {
	interactions *repo.InteractionRepo
	exampleCap   int
	storeTimeout time.Duration
}

func NewPatternService(interactions *repo.InteractionRepo, exampleCap int, storeTimeout time.Duration) *PatternService {
	if exampleCap <= 0 {
		exampleCap = 20
	}
	return &PatternService{
		interactions: interactions,
		exampleCap:   exampleCap,
		storeTimeout: storeTimeout,
	}
}

// MineSuccessPatterns groups interactions by (type, sentiment) against the
// outcomes of opportunities in the same industry and window, keeps groups at
// or above minSuccessRate, and emits one pattern per interaction type
// ordered by frequency descending.
func (s *PatternService) MineSuccessPatterns(ctx context.Context, industry string, minSuccessRate float64, windowDays int) ([]model.Pattern, error) {
	if strings.TrimSpace(industry) == "" {
		return nil, fmt.Errorf("%w: industry is required", appErr.ErrInvalidQuery)
	}
	if minSuccessRate < 0 || minSuccessRate > 1 {
		return nil, fmt.Errorf("%w: min_success_rate %v out of [0,1]", appErr.ErrInvalidQuery, minSuccessRate)
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	groups, err := s.interactions.AggregateSuccessGroups(sctx, industry, since, minSuccessRate)
	if err != nil {
		logutil.GetLogger(ctx).Error("success pattern aggregation failed", zap.String("industry", industry), zap.Error(err))
		return nil, err
	}
	if len(groups) == 0 {
		return []model.Pattern{}, nil
	}

	pairs := make([]repo.TypeSentiment, 0, len(groups))
	for _, g := range groups {
		for _, sentiment := range g.Sentiments {
			pairs = append(pairs, repo.TypeSentiment{Type: g.Type, Sentiment: sentiment})
		}
	}
	examples, err := s.interactions.ListPatternExamples(sctx, industry, since, pairs, s.exampleCap)
	if err != nil {
		logutil.GetLogger(ctx).Error("pattern example sampling failed", zap.String("industry", industry), zap.Error(err))
		return nil, err
	}

	patterns := make([]model.Pattern, 0, len(groups))
	for _, g := range groups {
		ex := examples[g.Type]
		if ex == nil {
			ex = []model.PatternExample{}
		}
		patterns = append(patterns, model.Pattern{
			PatternType:    g.Type,
			Frequency:      g.Frequency,
			AvgSuccessRate: g.AvgSuccessRate,
			Examples:       ex,
		})
	}
	return patterns, nil
}

// MineObjectionResponses reports how a given objection topic was handled
// across deals with a terminal outcome. The recommended approach is the most
// frequent response among won deals; frequency ties resolve to the
// lexically smaller text so the answer is stable.
func (s *PatternService) MineObjectionResponses(ctx context.Context, objectionType string) (*model.ObjectionResponse, error) {
	if strings.TrimSpace(objectionType) == "" {
		return nil, fmt.Errorf("%w: objection type is required", appErr.ErrInvalidQuery)
	}
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	outcomes, err := s.interactions.AggregateObjectionOutcomes(sctx, objectionType)
	if err != nil {
		logutil.GetLogger(ctx).Error("objection aggregation failed", zap.String("objection_type", objectionType), zap.Error(err))
		return nil, err
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("%w: no interactions tagged %q", appErr.ErrNotFound, objectionType)
	}

	var total, won int
	wonCounts := map[string]int{}
	successful := []model.ObjectionExample{}
	for _, o := range outcomes {
		total += o.Frequency
		if o.Status != model.OpportunityStatusWon {
			continue
		}
		won += o.Frequency
		wonCounts[o.Notes] += o.Frequency
		if len(successful) < s.exampleCap {
			successful = append(successful, model.ObjectionExample{
				Response:  o.Notes,
				NextSteps: o.NextSteps,
				Sentiment: o.Sentiment,
			})
		}
	}

	var recommended string
	best := -1
	for notes, count := range wonCounts {
		if count > best || (count == best && notes < recommended) {
			best = count
			recommended = notes
		}
	}

	return &model.ObjectionResponse{
		ObjectionType:       objectionType,
		SuccessfulResponses: successful,
		SuccessRate:         float64(won) / float64(total),
		RecommendedApproach: recommended,
	}, nil
}

// MineCompetitorMentions aggregates competitor references in one customer's
// recent interactions. Competitors mentioned fewer than minMentions times
// are dropped; each survivor carries an exact-sum sentiment distribution.
func (s *PatternService) MineCompetitorMentions(ctx context.Context, customerID string, windowDays, minMentions int) ([]model.CompetitorMention, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", appErr.ErrInvalidQuery)
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if minMentions <= 0 {
		minMentions = DefaultMinMentions
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	sentiments, err := s.interactions.AggregateCompetitorSentiment(sctx, customerID, since)
	if err != nil {
		logutil.GetLogger(ctx).Error("competitor aggregation failed", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	if len(sentiments) == 0 {
		return []model.CompetitorMention{}, nil
	}

	byCompetitor := map[string]map[string]int{}
	for _, cs := range sentiments {
		if byCompetitor[cs.Competitor] == nil {
			byCompetitor[cs.Competitor] = map[string]int{}
		}
		byCompetitor[cs.Competitor][cs.Sentiment] += cs.Mentions
	}

	contexts, err := s.interactions.ListCompetitorContexts(sctx, customerID, since, s.exampleCap*len(byCompetitor))
	if err != nil {
		logutil.GetLogger(ctx).Error("competitor context sampling failed", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	contextByCompetitor := map[string][]model.MentionContext{}
	for _, c := range contexts {
		if len(contextByCompetitor[c.Competitor]) >= s.exampleCap {
			continue
		}
		contextByCompetitor[c.Competitor] = append(contextByCompetitor[c.Competitor], model.MentionContext{
			Content:   c.Content,
			Sentiment: c.Sentiment,
			Date:      c.CreatedAt,
		})
	}

	mentions := make([]model.CompetitorMention, 0, len(byCompetitor))
	for competitor, counts := range byCompetitor {
		total := 0
		for _, c := range counts {
			total += c
		}
		if total < minMentions {
			continue
		}
		mctx := contextByCompetitor[competitor]
		if mctx == nil {
			mctx = []model.MentionContext{}
		}
		mentions = append(mentions, model.CompetitorMention{
			CompetitorName:        competitor,
			MentionCount:          total,
			Context:               mctx,
			SentimentDistribution: percentDistribution(counts),
		})
	}
	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].MentionCount != mentions[j].MentionCount {
			return mentions[i].MentionCount > mentions[j].MentionCount
		}
		return mentions[i].CompetitorName < mentions[j].CompetitorName
	})
	return mentions, nil
}

// percentDistribution converts counts to integer percentages that sum to
// exactly 100, distributing the rounding slack by largest remainder.
func percentDistribution(counts map[string]int) map[string]int {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return map[string]int{}
	}
	type share struct {
		key       string
		pct       int
		remainder float64
	}
	shares := make([]share, 0, len(counts))
	assigned := 0
	for key, c := range counts {
		exact := float64(c) * 100 / float64(total)
		base := int(math.Floor(exact))
		shares = append(shares, share{key: key, pct: base, remainder: exact - float64(base)})
		assigned += base
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].key < shares[j].key
	})
	for i := 0; i < 100-assigned; i++ {
		shares[i%len(shares)].pct++
	}
	result := make(map[string]int, len(shares))
	for _, s := range shares {
		result[s.key] = s.pct
	}
	return result
}
