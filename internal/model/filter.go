package model

import "time"

// ContextFilter narrows a contextual search. It is built per request and
// never persisted. Optional fields are pointers so "absent" stays distinct
// from a zero value.
type ContextFilter struct {
	CustomerID    string     `json:"customer_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	SourceTypes   []string   `json:"source_types"`
	MinSimilarity *float64   `json:"min_similarity"`
}

const DefaultMinSimilarity = 0.5

// MinSimilarityOrDefault resolves the threshold, defaulting to 0.5.
func (f ContextFilter) MinSimilarityOrDefault() float64 {
	if f.MinSimilarity == nil {
		return DefaultMinSimilarity
	}
	return *f.MinSimilarity
}
