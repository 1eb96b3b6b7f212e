package model

import "time"

// DealStatus is the binary outcome of the investment evaluation.
type DealStatus string

const (
	DealStatusPass DealStatus = "PASS"
	DealStatusFail DealStatus = "FAIL"
)

// Recommendation buckets the narrative advice.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationHold Recommendation = "HOLD"
	RecommendationPass Recommendation = "PASS"
)

// DealMetrics holds the computed underwriting metrics. Percentages are
// stored as plain numbers (6.2 means 6.2%); DSCR is a ratio.
type DealMetrics struct {
	CapRate             float64 `json:"cap_rate"`
	CashOnCash          float64 `json:"cash_on_cash"`
	IRR                 float64 `json:"irr"`
	NetPresentValue     float64 `json:"net_present_value"`
	DebtServiceCoverage float64 `json:"debt_service_coverage"`
}

// Decision is the pass/fail outcome plus a 0-100 composite score.
type Decision struct {
	Status DealStatus `json:"pass_fail"`
	Score  float64    `json:"score"`
}

// Narrative is the human-readable explanation of an analysis. The
// deterministic builder always fills Recommendation and at least one
// strength and one concern; AI enrichment may replace MarketInsights only.
type Narrative struct {
	Recommendation Recommendation `json:"recommendation"`
	MarketInsights string         `json:"market_insights"`
	Strengths      []string       `json:"key_strengths"`
	Concerns       []string       `json:"key_concerns"`
	RiskAssessment string         `json:"risk_assessment"`
	Enriched       bool           `json:"enriched"`
}

// AnalysisResult is the top-level aggregate produced once per analysis
// request. Immutable after creation; persisted keyed by ID.
type AnalysisResult struct {
	ID              string           `json:"id"`
	PropertyAddress string           `json:"property_address"`
	Decision        Decision         `json:"decision"`
	Metrics         DealMetrics      `json:"metrics"`
	Property        PropertyRecord   `json:"property_details"`
	MarketData      *MarketStats     `json:"market_data,omitempty"`
	Financial       FinancialSummary `json:"financial_summary"`
	Narrative       Narrative        `json:"narrative"`
	CreatedAt       time.Time        `json:"created_at"`
}
