package premium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-soul/risk-cli/internal/model"
)

func TestSuggestMidMarketProfile(t *testing.T) {
	// revenue 1M, loss probability 0.12:
	// limit = clamp(1,000,000, 250,000, 5,000,000) = 1,000,000
	// rate = 0.005 + 0.12*0.2 = 0.029
	// premium = 29,000.00
	p := model.ClientProfile{Revenue: 1_000_000}
	v := model.RiskVector{LossProbability: 0.12}

	rec, err := Suggest(p, v, 1000, DefaultRating())
	require.NoError(t, err)

	assert.InDelta(t, 0.029, rec.Rate, 1e-9)
	assert.InDelta(t, 1_000_000, rec.CoverageLimit, 1e-9)
	assert.InDelta(t, 29_000.00, rec.AdjustedPremium, 1e-9)
	assert.InDelta(t, 1000, rec.BaselinePremium, 1e-9)
}

func TestSuggestClampsLimit(t *testing.T) {
	v := model.RiskVector{LossProbability: 0.02}
	r := DefaultRating()

	low, err := Suggest(model.ClientProfile{Revenue: 10_000}, v, 1000, r)
	require.NoError(t, err)
	assert.InDelta(t, r.MinLimit, low.CoverageLimit, 1e-9)

	high, err := Suggest(model.ClientProfile{Revenue: 50_000_000}, v, 1000, r)
	require.NoError(t, err)
	assert.InDelta(t, r.MaxLimit, high.CoverageLimit, 1e-9)
}

func TestSuggestMonotoneInLossProbability(t *testing.T) {
	p := model.ClientProfile{Revenue: 2_000_000}
	r := DefaultRating()

	var prev float64
	for loss := 0.02; loss <= 0.25; loss += 0.01 {
		rec, err := Suggest(p, model.RiskVector{LossProbability: loss}, 1000, r)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rec.AdjustedPremium, prev, "loss=%.2f", loss)
		prev = rec.AdjustedPremium
	}
}

func TestSuggestRejectsNonPositiveBaseline(t *testing.T) {
	p := model.ClientProfile{Revenue: 1_000_000}
	v := model.RiskVector{LossProbability: 0.1}

	for _, baseline := range []float64{0, -100} {
		_, err := Suggest(p, v, baseline, DefaultRating())
		require.Error(t, err)
		assert.True(t, model.IsValidation(err))
	}
}

func TestSuggestRoundsToCents(t *testing.T) {
	p := model.ClientProfile{Revenue: 333_333}
	v := model.RiskVector{LossProbability: 0.037}

	rec, err := Suggest(p, v, 1000, DefaultRating())
	require.NoError(t, err)

	cents := rec.AdjustedPremium * 100
	assert.InDelta(t, cents, float64(int64(cents+0.5)), 1e-6)
}
