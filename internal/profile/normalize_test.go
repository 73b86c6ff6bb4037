package profile

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-soul/risk-cli/internal/model"
)

func TestNormalizeDefaults(t *testing.T) {
	p, err := Normalize(map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), p.Revenue)
	assert.Equal(t, 0, p.EmployeeCount)
	assert.False(t, p.HasMFA)
	assert.False(t, p.HasEDR)
	assert.Equal(t, model.BackupNone, p.BackupFrequency)
	assert.Equal(t, 0, p.PriorClaims)
	assert.InDelta(t, 0.5, p.Engagement, 0.001)
	assert.True(t, p.SupportProgram)
	assert.Nil(t, p.Extensions)
}

func TestNormalizeFullPayload(t *testing.T) {
	p, err := Normalize(map[string]any{
		"name":             "Acme Logistics",
		"state":            "tx",
		"industry":         "transportation",
		"revenue":          float64(20_000_000),
		"employee_count":   float64(100),
		"has_mfa":          false,
		"has_edr":          false,
		"backup_frequency": "none",
		"prior_claims":     float64(2),
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Logistics", p.Name)
	assert.Equal(t, "TX", p.State)
	assert.Equal(t, int64(20_000_000), p.Revenue)
	assert.Equal(t, 100, p.EmployeeCount)
	assert.Equal(t, model.BackupNone, p.BackupFrequency)
	assert.Equal(t, 2, p.PriorClaims)
}

func TestNormalizeAliases(t *testing.T) {
	p, err := Normalize(map[string]any{
		"annual_revenue": "5,000,000",
		"employees":      "20",
		"mfa_enabled":    "yes",
		"edr_deployed":   true,
		"backup_cadence": "Weekly",
		"claim_count":    1,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5_000_000), p.Revenue)
	assert.Equal(t, 20, p.EmployeeCount)
	assert.True(t, p.HasMFA)
	assert.True(t, p.HasEDR)
	assert.Equal(t, model.BackupWeekly, p.BackupFrequency)
	assert.Equal(t, 1, p.PriorClaims)
}

func TestNormalizeCoercions(t *testing.T) {
	p, err := Normalize(map[string]any{
		"revenue":        json.Number("1000000"),
		"employee_count": 15,
		"engagement":     "0.75",
		"has_mfa":        float64(1),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000), p.Revenue)
	assert.Equal(t, 15, p.EmployeeCount)
	assert.InDelta(t, 0.75, p.Engagement, 0.001)
	assert.True(t, p.HasMFA)
}

func TestNormalizeNumericBooleans(t *testing.T) {
	// The HTTP and file ingestion paths decode with UseNumber, so numeric
	// booleans arrive as json.Number.
	dec := json.NewDecoder(strings.NewReader(`{"has_mfa": 1, "has_edr": 0, "support_program": 1}`))
	dec.UseNumber()
	var payload map[string]any
	require.NoError(t, dec.Decode(&payload))

	p, err := Normalize(payload)
	require.NoError(t, err)
	assert.True(t, p.HasMFA)
	assert.False(t, p.HasEDR)
	assert.True(t, p.SupportProgram)
}

func TestNormalizeValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		field   string
	}{
		{"negative revenue", map[string]any{"revenue": float64(-1)}, "revenue"},
		{"negative employees", map[string]any{"employee_count": float64(-5)}, "employee_count"},
		{"negative claims", map[string]any{"prior_claims": float64(-1)}, "prior_claims"},
		{"non-numeric revenue", map[string]any{"revenue": "lots"}, "revenue"},
		{"fractional employees", map[string]any{"employee_count": 2.5}, "employee_count"},
		{"bad backup frequency", map[string]any{"backup_frequency": "hourly"}, "backup_frequency"},
		{"bad boolean", map[string]any{"has_mfa": "maybe"}, "has_mfa"},
		{"numeric boolean out of range", map[string]any{"has_mfa": json.Number("2")}, "has_mfa"},
		{"non-string name", map[string]any{"name": float64(42)}, "name"},
		{"non-string state", map[string]any{"state": true}, "state"},
		{"engagement out of range", map[string]any{"engagement": 1.5}, "engagement"},
		{"schedule variance out of range", map[string]any{"schedule_variance": -0.1}, "schedule_variance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.payload)
			require.Error(t, err)
			assert.True(t, model.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNormalizePreservesExtensions(t *testing.T) {
	p, err := Normalize(map[string]any{
		"revenue":       float64(100),
		"custom_field":  "hello",
		"another_field": float64(42),
	})
	require.NoError(t, err)

	require.NotNil(t, p.Extensions)
	assert.Equal(t, "hello", p.Extensions["custom_field"])
	assert.Equal(t, float64(42), p.Extensions["another_field"])
	assert.NotContains(t, p.Extensions, "revenue")
}
