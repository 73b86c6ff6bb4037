package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinity-soul/risk-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_SaveAssessment(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("assess-1", "insurance", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			0.2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	a := sampleAssessment("insurance", 0.2)
	a.ID = "assess-1"
	err := s.SaveAssessment(context.Background(), a)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAssessment_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, vertical, profile, vector, premium, created_at FROM assessments WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAssessment(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAssessment(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "vertical", "profile", "vector", "premium", "created_at"}).
		AddRow("assess-1", "insurance",
			[]byte(`{"name":"Acme Corp"}`),
			[]byte(`{"overall_risk":0.2}`),
			[]byte(`{"adjusted_premium":45000}`),
			now)

	mock.ExpectQuery(`SELECT id, vertical, profile, vector, premium, created_at FROM assessments WHERE id = \$1`).
		WithArgs("assess-1").
		WillReturnRows(rows)

	got, err := s.GetAssessment(context.Background(), "assess-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Profile.Name)
	assert.InDelta(t, 0.2, got.Vector.OverallRisk, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAssessments_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"assessments"},
		[]string{"id", "vertical", "profile", "vector", "premium", "overall_risk", "created_at"}).
		WillReturnResult(2)

	n, err := s.SaveAssessments(context.Background(), []model.Assessment{
		sampleAssessment("insurance", 0.1),
		sampleAssessment("insurance", 0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAssessments_Filter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "vertical", "profile", "vector", "premium", "created_at"}).
		AddRow("assess-2", "campus",
			[]byte(`{"name":"State U"}`),
			[]byte(`{"overall_risk":0.8}`),
			[]byte(`{}`),
			now)

	mock.ExpectQuery(`SELECT id, vertical, profile, vector, premium, created_at FROM assessments`).
		WithArgs("campus", 0.6, 100).
		WillReturnRows(rows)

	got, err := s.ListAssessments(context.Background(), AssessmentFilter{Vertical: "campus", MinRisk: 0.6})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "State U", got[0].Profile.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
