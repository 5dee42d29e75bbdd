package query

import (
	"fmt"

	"github.com/crmforge/salesrag/internal/model"
	appErr "github.com/crmforge/salesrag/internal/pkg/errors"
)

// Compose builds the document-index predicate for a ContextFilter. A date
// range with only one bound is rejected: half-open temporal filters are
// ambiguous and must not silently narrow or widen the cohort.
func Compose(filter model.ContextFilter) (*Predicate, error) {
	p := NewPredicate()
	if filter.CustomerID != "" {
		p.Equals("source_id", filter.CustomerID)
	}
	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		if filter.EndDate.Before(*filter.StartDate) {
			return nil, fmt.Errorf("%w: end_date before start_date", appErr.ErrInvalidRange)
		}
		p.Between("created_at", *filter.StartDate, *filter.EndDate)
	case filter.StartDate != nil || filter.EndDate != nil:
		return nil, fmt.Errorf("%w: both start_date and end_date must be set", appErr.ErrInvalidRange)
	}
	if len(filter.SourceTypes) > 0 {
		p.In("source_type", filter.SourceTypes)
	}
	min := filter.MinSimilarityOrDefault()
	if min < 0 || min > 1 {
		return nil, fmt.Errorf("%w: min_similarity %v out of [0,1]", appErr.ErrInvalidQuery, min)
	}
	p.Similarity(min)
	return p, nil
}
