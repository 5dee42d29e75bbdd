package model

import "time"

// Pattern is a recurring interaction shape with a success-rate signal,
// always derived on demand, never stored.
type Pattern struct {
	PatternType    string           `json:"pattern_type"`
	Frequency      int              `json:"frequency"`
	AvgSuccessRate float64          `json:"avg_success_rate"`
	Examples       []PatternExample `json:"examples"`
}

type PatternExample struct {
	Notes     string    `json:"notes"`
	Sentiment string    `json:"sentiment"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
}

type ObjectionResponse struct {
	ObjectionType       string             `json:"objection_type"`
	SuccessfulResponses []ObjectionExample `json:"successful_responses"`
	SuccessRate         float64            `json:"success_rate"`
	RecommendedApproach string             `json:"recommended_approach"`
}

type ObjectionExample struct {
	Response  string `json:"response"`
	NextSteps string `json:"next_steps"`
	Sentiment string `json:"sentiment"`
}

type CompetitorMention struct {
	CompetitorName string           `json:"competitor_name"`
	MentionCount   int              `json:"mention_count"`
	Context        []MentionContext `json:"context"`
	// SentimentDistribution holds integer percentages that always sum to 100.
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
}

type MentionContext struct {
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment"`
	Date      time.Time `json:"date"`
}
