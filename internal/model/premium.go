package model

// PremiumRecommendation pairs a baseline premium with the risk-adjusted
// recommendation and the vector that produced it.
type PremiumRecommendation struct {
	BaselinePremium float64 `json:"baseline_premium"`
	AdjustedPremium float64 `json:"adjusted_premium"`

	// Rate is the applied annual rate (base rate plus loss-probability
	// load).
	Rate float64 `json:"rate"`

	// CoverageLimit is the revenue-derived limit the rate was applied to,
	// clamped to the configured band.
	CoverageLimit float64 `json:"coverage_limit"`

	Vector RiskVector `json:"vector"`
}
