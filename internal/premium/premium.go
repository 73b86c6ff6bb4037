// Package premium maps a risk vector to a premium recommendation using a
// fixed rate formula: a base rate plus a loss-probability load, applied to a
// revenue-derived coverage limit.
package premium

import (
	"math"

	"github.com/infinity-soul/risk-cli/internal/model"
)

// Rating parameters. The coverage limit is the profile revenue clamped to
// the [MinLimit, MaxLimit] band.
type Rating struct {
	BaseRate       float64 `yaml:"base_rate" mapstructure:"base_rate"`
	LossMultiplier float64 `yaml:"loss_multiplier" mapstructure:"loss_multiplier"`
	MinLimit       float64 `yaml:"min_limit" mapstructure:"min_limit"`
	MaxLimit       float64 `yaml:"max_limit" mapstructure:"max_limit"`
}

// DefaultRating returns the standard cyber rating parameters.
func DefaultRating() Rating {
	return Rating{
		BaseRate:       0.005,
		LossMultiplier: 0.2,
		MinLimit:       250_000,
		MaxLimit:       5_000_000,
	}
}

// Suggest computes the adjusted premium for a profile and its risk vector.
// The adjusted premium is monotonically non-decreasing in the vector's loss
// probability. A non-positive baseline is rejected rather than propagated as
// a degenerate result.
func Suggest(p model.ClientProfile, v model.RiskVector, baseline float64, r Rating) (model.PremiumRecommendation, error) {
	if baseline <= 0 {
		return model.PremiumRecommendation{}, model.Invalid("baseline_premium", "must be > 0")
	}

	rate := r.BaseRate + v.LossProbability*r.LossMultiplier
	limit := clamp(float64(p.Revenue), r.MinLimit, r.MaxLimit)
	adjusted := round2(limit * rate)

	return model.PremiumRecommendation{
		BaselinePremium: baseline,
		AdjustedPremium: adjusted,
		Rate:            rate,
		CoverageLimit:   limit,
		Vector:          v,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
