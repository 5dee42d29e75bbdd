package model

import "time"

const (
	InteractionTypeCall     = "call"
	InteractionTypeEmail    = "email"
	InteractionTypeMeeting  = "meeting"
	InteractionTypeDemo     = "demo"
	InteractionTypeProposal = "proposal"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Interaction is append-only history; rows are never updated once written.
type Interaction struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	SalesPersonID string    `json:"sales_person_id"`
	Type          string    `json:"type"`
	Notes         string    `json:"notes"`
	NextSteps     string    `json:"next_steps"`
	Sentiment     string    `json:"sentiment"`
	Topics        []string  `json:"topics"`
	CreatedAt     time.Time `json:"created_at"`
}

// InteractionDetail is an interaction joined with its sales person name.
type InteractionDetail struct {
	Interaction
	SalesPersonName string `json:"sales_person_name"`
}
