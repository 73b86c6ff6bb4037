package engine

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/infinity-soul/risk-cli/internal/cohort"
	"github.com/infinity-soul/risk-cli/internal/model"
)

// SegmentEntry locates one analyzed policy inside a segment by its batch
// index, paired with its recommended premium.
type SegmentEntry struct {
	Index   int     `json:"index"`
	Premium float64 `json:"premium"`
}

// Segmentation is a strict partition of a portfolio batch into the three
// underwriting tiers.
type Segmentation struct {
	Preferred    []SegmentEntry `json:"preferred"`
	Standard     []SegmentEntry `json:"standard"`
	NonPreferred []SegmentEntry `json:"nonpreferred"`
}

// PortfolioSummary describes an analyzed portfolio at a glance. The loss
// ratio is a configured estimate, not a computed value.
type PortfolioSummary struct {
	PolicyCount        int      `json:"policy_count"`
	AveragePremium     float64  `json:"average_premium"`
	EstimatedLossRatio float64  `json:"estimated_loss_ratio"`
	Recommendations    []string `json:"recommendations"`
}

// PortfolioResult bundles the batch analyses with the segmentation and
// summary.
type PortfolioResult struct {
	Analyses     []Analysis        `json:"analyses"`
	CohortStats  cohort.Statistics `json:"cohort_stats"`
	Segmentation Segmentation      `json:"segmentation"`
	Summary      PortfolioSummary  `json:"portfolio_summary"`
}

// AnalyzeInsurancePortfolio analyzes the batch, partitions it into
// preferred (<0.33), standard ([0.33,0.66)), and nonpreferred (>=0.66)
// segments by overall risk, and summarizes the portfolio. Preferred and
// standard segments sort ascending by premium, nonpreferred descending.
func (e *Engine) AnalyzeInsurancePortfolio(payloads []map[string]any) (*PortfolioResult, error) {
	batch, err := e.AnalyzeBatch(payloads)
	if err != nil {
		return nil, eris.Wrap(err, "engine: portfolio")
	}

	seg := segment(batch.Analyses)

	var premiumSum float64
	for _, a := range batch.Analyses {
		premiumSum += a.Premium.AdjustedPremium
	}
	avgPremium := 0.0
	if len(batch.Analyses) > 0 {
		avgPremium = math.Round(premiumSum/float64(len(batch.Analyses))*100) / 100
	}

	return &PortfolioResult{
		Analyses:     batch.Analyses,
		CohortStats:  batch.CohortStats,
		Segmentation: seg,
		Summary: PortfolioSummary{
			PolicyCount:        len(batch.Analyses),
			AveragePremium:     avgPremium,
			EstimatedLossRatio: e.lossRatio,
			Recommendations:    batch.CohortStats.Recommendations,
		},
	}, nil
}

func segment(analyses []Analysis) Segmentation {
	var seg Segmentation

	for _, a := range analyses {
		entry := SegmentEntry{Index: a.Index, Premium: a.Premium.AdjustedPremium}
		switch a.Vector.Band() {
		case model.BandPreferred:
			seg.Preferred = append(seg.Preferred, entry)
		case model.BandStandard:
			seg.Standard = append(seg.Standard, entry)
		default:
			seg.NonPreferred = append(seg.NonPreferred, entry)
		}
	}

	ascending := func(entries []SegmentEntry) {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Premium < entries[j].Premium
		})
	}
	ascending(seg.Preferred)
	ascending(seg.Standard)
	sort.SliceStable(seg.NonPreferred, func(i, j int) bool {
		return seg.NonPreferred[i].Premium > seg.NonPreferred[j].Premium
	})

	return seg
}
