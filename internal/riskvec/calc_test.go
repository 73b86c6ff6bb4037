package riskvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-soul/risk-cli/internal/model"
)

func cleanProfile() model.ClientProfile {
	return model.ClientProfile{
		Revenue:         5_000_000,
		EmployeeCount:   20,
		HasMFA:          true,
		HasEDR:          true,
		BackupFrequency: model.BackupDaily,
		PriorClaims:     0,
		Engagement:      0.5,
		SupportProgram:  true,
	}
}

func TestLossProbabilityCleanProfile(t *testing.T) {
	// All thresholds below trigger, full security controls, no claims:
	// base only.
	v := Compute(cleanProfile(), InsuranceWeights())
	assert.InDelta(t, 0.02, v.LossProbability, 1e-9)
}

func TestLossProbabilityRiskyProfile(t *testing.T) {
	p := model.ClientProfile{
		Revenue:         20_000_000,
		EmployeeCount:   100,
		HasMFA:          false,
		HasEDR:          false,
		BackupFrequency: model.BackupNone,
		PriorClaims:     2,
		Engagement:      0.5,
		SupportProgram:  true,
	}
	// 0.02 + 0.01 + 0.01 + 0.015 + 0.015 + 0.03 + 0.02 = 0.12
	v := Compute(p, InsuranceWeights())
	assert.InDelta(t, 0.12, v.LossProbability, 1e-9)
}

func TestLossProbabilityBounds(t *testing.T) {
	w := InsuranceWeights()
	profiles := []model.ClientProfile{
		{},
		cleanProfile(),
		{Revenue: 1e12, EmployeeCount: 100000, BackupFrequency: model.BackupNone, PriorClaims: 500},
		{HasMFA: true, BackupFrequency: model.BackupWeekly, PriorClaims: 3},
	}
	for _, p := range profiles {
		v := Compute(p, w)
		assert.GreaterOrEqual(t, v.LossProbability, w.Loss.Base)
		assert.LessOrEqual(t, v.LossProbability, w.Loss.Ceiling)
	}
}

func TestLossProbabilityMonotoneInClaims(t *testing.T) {
	w := InsuranceWeights()
	p := cleanProfile()

	prev := Compute(p, w).LossProbability
	for claims := 1; claims <= 40; claims++ {
		p.PriorClaims = claims
		cur := Compute(p, w).LossProbability
		assert.GreaterOrEqual(t, cur, prev, "claims=%d", claims)
		prev = cur
	}
	// Past the ceiling additional claims are invariant.
	assert.InDelta(t, w.Loss.Ceiling, prev, 1e-9)
}

func TestVectorFieldsInRange(t *testing.T) {
	w := CampusWeights()
	p := model.ClientProfile{
		IncidentReports:  12,
		Engagement:       0.1,
		SupportProgram:   false,
		ScheduleVariance: 0.9,
		BackupFrequency:  model.BackupNone,
		PriorClaims:      10,
	}
	v := Compute(p, w)

	for name, f := range map[string]float64{
		"loss":        v.LossProbability,
		"volatility":  v.EmotionalVolatility,
		"stability":   v.StabilityScore,
		"consistency": v.BehavioralConsistency,
		"overall":     v.OverallRisk,
	} {
		assert.GreaterOrEqual(t, f, 0.0, name)
		assert.LessOrEqual(t, f, 1.0, name)
	}
}

func TestComputeDeterministic(t *testing.T) {
	p := model.ClientProfile{
		Revenue:         20_000_000,
		EmployeeCount:   100,
		BackupFrequency: model.BackupNone,
		PriorClaims:     2,
		IncidentReports: 3,
		Engagement:      0.35,
	}
	w := InsuranceWeights()
	first := Compute(p, w)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compute(p, w))
	}
}

func TestCampusBlendWeighsVolatility(t *testing.T) {
	p := model.ClientProfile{
		HasMFA:          true,
		HasEDR:          true,
		BackupFrequency: model.BackupDaily,
		IncidentReports: 6,
		Engagement:      0.2,
		SupportProgram:  false,
	}
	ins := Compute(p, InsuranceWeights())
	campus := Compute(p, CampusWeights())

	assert.Greater(t, campus.OverallRisk, ins.OverallRisk,
		"high-volatility profile should rate riskier under the campus blend")
}

func TestDefaultsFor(t *testing.T) {
	for _, name := range []string{"", "insurance", "Insurer", "campus", "UNIVERSITY"} {
		_, err := DefaultsFor(name)
		assert.NoError(t, err, name)
	}
	_, err := DefaultsFor("maritime")
	require.Error(t, err)
}
