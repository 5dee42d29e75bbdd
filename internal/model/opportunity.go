package model

import "time"

const (
	OpportunityStatusIdentified   = "identified"
	OpportunityStatusQualified    = "qualified"
	OpportunityStatusProposalSent = "proposalSent"
	OpportunityStatusNegotiating  = "negotiating"
	OpportunityStatusWon          = "won"
	OpportunityStatusLost         = "lost"
)

type Opportunity struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	SalesPersonID string    `json:"sales_person_id"`
	Status        string    `json:"status"`
	Value         float64   `json:"value"`
	LossReason    *string   `json:"loss_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsTerminal reports whether a status carries a final outcome.
func IsTerminal(status string) bool {
	return status == OpportunityStatusWon || status == OpportunityStatusLost
}

// OpportunityContext is the opportunity enriched with its customer's profile,
// the shape the suggestion engine works from.
type OpportunityContext struct {
	Opportunity
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
}
