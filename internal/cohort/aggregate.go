// Package cohort computes descriptive statistics over batches of risk
// vectors and derives fixed-text recommendations from thresholds.
package cohort

import (
	"github.com/infinity-soul/risk-cli/internal/model"
)

// DefaultFlagThreshold marks individuals for follow-up when their overall
// risk meets or exceeds it.
const DefaultFlagThreshold = 0.6

// Thresholds driving the canned recommendations.
const (
	elevatedAverage   = 0.5
	flaggedShareLimit = 0.3
	quietAverage      = 0.25
)

// Distribution counts vectors per risk band.
type Distribution struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
}

// Statistics aggregates a batch of risk vectors. AverageRisk is nil for an
// empty batch: an empty cohort has a defined result, never NaN.
type Statistics struct {
	Total           int          `json:"total"`
	Flagged         int          `json:"flagged"`
	FlagThreshold   float64      `json:"flag_threshold"`
	AverageRisk     *float64     `json:"average_risk"`
	Distribution    Distribution `json:"distribution"`
	Recommendations []string     `json:"recommendations"`
}

// Aggregate computes cohort statistics in one pass. A threshold <= 0 falls
// back to DefaultFlagThreshold.
func Aggregate(vectors []model.RiskVector, flagThreshold float64) Statistics {
	if flagThreshold <= 0 {
		flagThreshold = DefaultFlagThreshold
	}

	stats := Statistics{
		Total:         len(vectors),
		FlagThreshold: flagThreshold,
	}
	if len(vectors) == 0 {
		return stats
	}

	var sum float64
	for _, v := range vectors {
		sum += v.OverallRisk
		if v.OverallRisk >= flagThreshold {
			stats.Flagged++
		}
		switch v.Band() {
		case model.BandPreferred:
			stats.Distribution.Low++
		case model.BandStandard:
			stats.Distribution.Moderate++
		default:
			stats.Distribution.High++
		}
	}

	avg := sum / float64(len(vectors))
	stats.AverageRisk = &avg
	stats.Recommendations = recommend(avg, stats.Flagged, stats.Total)

	return stats
}

// recommend picks fixed recommendation strings from the aggregate
// thresholds.
func recommend(avg float64, flagged, total int) []string {
	var recs []string

	if avg >= elevatedAverage {
		recs = append(recs, "Cohort-wide risk is elevated: review underwriting guidelines before binding new policies.")
	}
	if total > 0 && float64(flagged)/float64(total) >= flaggedShareLimit {
		recs = append(recs, "A large share of the cohort is flagged: schedule targeted outreach for flagged individuals.")
	}
	if flagged == 0 && avg < quietAverage {
		recs = append(recs, "Cohort is within normal bounds: no action required.")
	}

	return recs
}
