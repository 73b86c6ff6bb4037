package model

// RiskVector is the set of named risk sub-scores computed for one profile.
// Every field lies in [0,1] by construction: each dimension is clamped by
// the weight table that produced it.
type RiskVector struct {
	// LossProbability is the annualized loss probability used for premium
	// rating. Floor and ceiling come from the weight table (0.02 / 0.25 by
	// default).
	LossProbability float64 `json:"loss_probability"`

	// EmotionalVolatility is higher for entities with frequent incidents
	// and weak support structures.
	EmotionalVolatility float64 `json:"emotional_volatility"`

	// StabilityScore is a positive signal: higher means more stable.
	StabilityScore float64 `json:"stability_score"`

	// BehavioralConsistency is a positive signal: higher means more
	// predictable behavior.
	BehavioralConsistency float64 `json:"behavioral_consistency"`

	// OverallRisk blends the dimensions above into a single [0,1] score.
	OverallRisk float64 `json:"overall_risk"`
}

// RiskBand buckets an overall risk score into the three underwriting tiers.
type RiskBand string

const (
	BandPreferred    RiskBand = "preferred"
	BandStandard     RiskBand = "standard"
	BandNonPreferred RiskBand = "nonpreferred"
)

// Segmentation thresholds on OverallRisk.
const (
	PreferredCeiling = 0.33
	StandardCeiling  = 0.66
)

// Band returns the underwriting tier for the vector's overall risk.
func (v RiskVector) Band() RiskBand {
	switch {
	case v.OverallRisk < PreferredCeiling:
		return BandPreferred
	case v.OverallRisk < StandardCeiling:
		return BandStandard
	default:
		return BandNonPreferred
	}
}
