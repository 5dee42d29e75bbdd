package model

type Suggestion struct {
	NextSteps     []string `json:"next_steps"`
	TalkingPoints []string `json:"talking_points"`
	RiskFactors   []string `json:"risk_factors"`
}
