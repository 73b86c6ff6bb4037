package riskvec

import (
	"github.com/infinity-soul/risk-cli/internal/model"
)

// Compute derives the full risk vector for a normalized profile. The
// function is total and deterministic: any valid profile produces a vector
// with every field inside its configured bounds.
func Compute(p model.ClientProfile, w WeightTable) model.RiskVector {
	loss := lossProbability(p, w.Loss)
	vol := volatility(p, w.Volatility)
	stab := stability(p, w.Stability)
	cons := consistency(p, w.Consistency)

	return model.RiskVector{
		LossProbability:       loss,
		EmotionalVolatility:   vol,
		StabilityScore:        stab,
		BehavioralConsistency: cons,
		OverallRisk:           overall(loss, vol, stab, cons, w),
	}
}

// lossProbability starts from a fixed base and adds a load for each risk
// indicator, clamped to the table ceiling. The base acts as the floor.
func lossProbability(p model.ClientProfile, w LossWeights) float64 {
	score := w.Base

	if p.Revenue > w.RevenueThreshold {
		score += w.RevenueLoad
	}
	if p.EmployeeCount > w.EmployeeThreshold {
		score += w.EmployeeLoad
	}
	if !p.HasMFA {
		score += w.NoMFALoad
	}
	if !p.HasEDR {
		score += w.NoEDRLoad
	}
	switch p.BackupFrequency {
	case model.BackupWeekly, model.BackupMonthly:
		score += w.BackupPartialLoad
	case model.BackupNone:
		score += w.BackupNoneLoad
	}
	score += w.PerClaimLoad * float64(p.PriorClaims)

	return clamp(score, w.Base, w.Ceiling)
}

func volatility(p model.ClientProfile, w VolatilityWeights) float64 {
	score := w.Base

	score += w.PerIncident * float64(p.IncidentReports)
	if !p.SupportProgram {
		score += w.NoSupportLoad
	}
	if p.Engagement < w.LowEngagementThreshold {
		score += w.LowEngagementLoad
	}

	return clamp(score, 0, w.Ceiling)
}

func stability(p model.ClientProfile, w StabilityWeights) float64 {
	score := w.Base

	if p.TenureMonths >= w.TenureMonths {
		score += w.TenureBonus
	}
	score -= w.PerClaimPenalty * float64(p.PriorClaims)
	if p.BackupFrequency == model.BackupNone {
		score -= w.NoBackupPenalty
	}

	return clamp(score, w.Floor, w.Ceiling)
}

func consistency(p model.ClientProfile, w ConsistencyWeights) float64 {
	score := w.Base

	if p.Engagement >= w.HighEngagementThreshold {
		score += w.HighEngagementBonus
	}
	score -= w.PerIncidentPenalty * float64(p.IncidentReports)
	if p.ScheduleVariance > w.VarianceThreshold {
		score -= w.VariancePenalty
	}

	return clamp(score, w.Floor, w.Ceiling)
}

// overall blends the dimensions into a single [0,1] score. Loss probability
// is rescaled by its ceiling so it contributes on the same scale as the
// other dimensions; stability and consistency contribute inverted.
func overall(loss, vol, stab, cons float64, w WeightTable) float64 {
	sum := w.Blend.Sum()
	if sum <= 0 {
		return 0
	}

	lossScaled := loss / w.Loss.Ceiling
	blended := w.Blend.Loss*lossScaled +
		w.Blend.Volatility*vol +
		w.Blend.Instability*(1-stab) +
		w.Blend.Inconsistency*(1-cons)

	return clamp(blended/sum, 0, 1)
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
