package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-soul/risk-cli/internal/model"
)

func analysisWith(index int, overall, prem float64) Analysis {
	return Analysis{
		Index:   index,
		Vector:  model.RiskVector{OverallRisk: overall},
		Premium: model.PremiumRecommendation{AdjustedPremium: prem},
	}
}

func TestSegmentOnePerTier(t *testing.T) {
	seg := segment([]Analysis{
		analysisWith(0, 0.1, 2_000),
		analysisWith(1, 0.5, 8_000),
		analysisWith(2, 0.9, 40_000),
	})

	require.Len(t, seg.Preferred, 1)
	require.Len(t, seg.Standard, 1)
	require.Len(t, seg.NonPreferred, 1)
	assert.Equal(t, 0, seg.Preferred[0].Index)
	assert.Equal(t, 1, seg.Standard[0].Index)
	assert.Equal(t, 2, seg.NonPreferred[0].Index)
}

func TestSegmentBoundaries(t *testing.T) {
	seg := segment([]Analysis{
		analysisWith(0, 0.3299, 1),
		analysisWith(1, 0.33, 1),
		analysisWith(2, 0.6599, 1),
		analysisWith(3, 0.66, 1),
	})

	assert.Len(t, seg.Preferred, 1)
	assert.Len(t, seg.Standard, 2)
	assert.Len(t, seg.NonPreferred, 1)
}

func TestSegmentStrictPartition(t *testing.T) {
	analyses := []Analysis{
		analysisWith(0, 0.05, 1_000),
		analysisWith(1, 0.2, 3_000),
		analysisWith(2, 0.4, 9_000),
		analysisWith(3, 0.5, 7_000),
		analysisWith(4, 0.7, 50_000),
		analysisWith(5, 0.95, 120_000),
	}

	seg := segment(analyses)
	assert.Equal(t, len(analyses),
		len(seg.Preferred)+len(seg.Standard)+len(seg.NonPreferred))

	seen := map[int]bool{}
	for _, entries := range [][]SegmentEntry{seg.Preferred, seg.Standard, seg.NonPreferred} {
		for _, entry := range entries {
			assert.False(t, seen[entry.Index], "index %d appears twice", entry.Index)
			seen[entry.Index] = true
		}
	}
}

func TestSegmentOrdering(t *testing.T) {
	seg := segment([]Analysis{
		analysisWith(0, 0.1, 5_000),
		analysisWith(1, 0.1, 2_000),
		analysisWith(2, 0.5, 9_000),
		analysisWith(3, 0.5, 4_000),
		analysisWith(4, 0.9, 30_000),
		analysisWith(5, 0.9, 80_000),
	})

	// Preferred and standard ascend by premium, nonpreferred descends.
	assert.Equal(t, []SegmentEntry{{1, 2_000}, {0, 5_000}}, seg.Preferred)
	assert.Equal(t, []SegmentEntry{{3, 4_000}, {2, 9_000}}, seg.Standard)
	assert.Equal(t, []SegmentEntry{{5, 80_000}, {4, 30_000}}, seg.NonPreferred)
}

func TestAnalyzeInsurancePortfolio(t *testing.T) {
	e := newTestEngine(t, Config{})

	res, err := e.AnalyzeInsurancePortfolio([]map[string]any{cleanPayload(), riskyPayload()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.PolicyCount)
	assert.InDelta(t, DefaultLossRatioEstimate, res.Summary.EstimatedLossRatio, 1e-9)
	assert.Greater(t, res.Summary.AveragePremium, 0.0)
	assert.Equal(t, len(res.Analyses),
		len(res.Segmentation.Preferred)+
			len(res.Segmentation.Standard)+
			len(res.Segmentation.NonPreferred))
}

func TestAnalyzeInsurancePortfolioEmpty(t *testing.T) {
	e := newTestEngine(t, Config{})

	res, err := e.AnalyzeInsurancePortfolio(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.PolicyCount)
	assert.Zero(t, res.Summary.AveragePremium)
}
