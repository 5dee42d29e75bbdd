package model

import "time"

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Size      string    `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type SalesPerson struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SimilarCustomer struct {
	Customer
	Similarity float64 `json:"similarity"`
}

type CustomerContext struct {
	CompanyInfo         Customer            `json:"company_info"`
	RecentInteractions  []InteractionDetail `json:"recent_interactions"`
	ActiveOpportunities []Opportunity       `json:"active_opportunities"`
}
