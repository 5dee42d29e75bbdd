package model

import "time"

const (
	SourceTypeCustomer    = "customer"
	SourceTypeInteraction = "interaction"
	SourceTypeOpportunity = "opportunity"
)

// Document is one embedded row in the similarity index. The ingestion
// pipeline owns writes; the engine only reads and scores.
type Document struct {
	ID         int64                  `json:"id"`
	SourceType string                 `json:"source_type"`
	SourceID   string                 `json:"source_id"`
	Content    string                 `json:"content"`
	Embedding  []float32              `json:"-"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ScoredDocument is a similarity-search hit. Similarity is
// 1 - cosine_distance, in [0, 1].
type ScoredDocument struct {
	SourceType string                 `json:"source_type"`
	SourceID   string                 `json:"source_id"`
	Content    string                 `json:"content"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

type SearchResponse struct {
	Results []ScoredDocument `json:"results"`
	Total   int              `json:"total"`
	Query   string           `json:"query"`
}
