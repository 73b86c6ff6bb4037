package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-soul/risk-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleAssessment(vertical string, overall float64) model.Assessment {
	return model.Assessment{
		Vertical: vertical,
		Profile: model.ClientProfile{
			Name:            "Acme Corp",
			Revenue:         5_000_000,
			EmployeeCount:   20,
			HasMFA:          true,
			HasEDR:          true,
			BackupFrequency: model.BackupDaily,
			Engagement:      0.5,
			SupportProgram:  true,
		},
		Vector: model.RiskVector{
			LossProbability: 0.02,
			OverallRisk:     overall,
		},
		Premium: model.PremiumRecommendation{
			BaselinePremium: 1000,
			AdjustedPremium: 45_000,
			Rate:            0.009,
			CoverageLimit:   5_000_000,
		},
	}
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a := sampleAssessment("insurance", 0.2)
	a.ID = "assess-1"
	a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.SaveAssessment(ctx, a))

	got, err := s.GetAssessment(ctx, "assess-1")
	require.NoError(t, err)
	assert.Equal(t, "insurance", got.Vertical)
	assert.Equal(t, "Acme Corp", got.Profile.Name)
	assert.InDelta(t, 0.2, got.Vector.OverallRisk, 1e-9)
	assert.InDelta(t, 45_000.0, got.Premium.AdjustedPremium, 1e-9)
}

func TestSQLiteSaveAssignsID(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAssessment(ctx, sampleAssessment("insurance", 0.1)))

	list, err := s.ListAssessments(ctx, AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestSQLiteGetNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetAssessment(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteSaveBatch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	batch := []model.Assessment{
		sampleAssessment("insurance", 0.1),
		sampleAssessment("insurance", 0.5),
		sampleAssessment("campus", 0.9),
	}
	n, err := s.SaveAssessments(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := s.ListAssessments(ctx, AssessmentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestSQLiteSaveBatchEmpty(t *testing.T) {
	s := newTestSQLite(t)

	n, err := s.SaveAssessments(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteListFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.SaveAssessments(ctx, []model.Assessment{
		sampleAssessment("insurance", 0.1),
		sampleAssessment("insurance", 0.7),
		sampleAssessment("campus", 0.8),
	})
	require.NoError(t, err)

	byVertical, err := s.ListAssessments(ctx, AssessmentFilter{Vertical: "campus"})
	require.NoError(t, err)
	require.Len(t, byVertical, 1)
	assert.Equal(t, "campus", byVertical[0].Vertical)

	byRisk, err := s.ListAssessments(ctx, AssessmentFilter{MinRisk: 0.6})
	require.NoError(t, err)
	assert.Len(t, byRisk, 2)

	limited, err := s.ListAssessments(ctx, AssessmentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
