package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/infinity-soul/risk-cli/internal/db"
	"github.com/infinity-soul/risk-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	vertical     TEXT NOT NULL,
	profile      JSONB NOT NULL,
	vector       JSONB NOT NULL,
	premium      JSONB NOT NULL,
	overall_risk DOUBLE PRECISION NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assessments_vertical ON assessments(vertical);
CREATE INDEX IF NOT EXISTS idx_assessments_overall_risk ON assessments(overall_risk);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveAssessment(ctx context.Context, a model.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	profileJSON, vectorJSON, premiumJSON, err := marshalAssessment(a)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, vertical, profile, vector, premium, overall_risk, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Vertical, profileJSON, vectorJSON, premiumJSON,
		a.Vector.OverallRisk, a.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert assessment")
}

// SaveAssessments bulk-inserts a whole batch with the COPY protocol.
func (s *PostgresStore) SaveAssessments(ctx context.Context, as []model.Assessment) (int64, error) {
	if len(as) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(as))
	for _, a := range as {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		profileJSON, vectorJSON, premiumJSON, err := marshalAssessment(a)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{
			a.ID, a.Vertical, profileJSON, vectorJSON, premiumJSON,
			a.Vector.OverallRisk, a.CreatedAt,
		})
	}

	return db.CopyFrom(ctx, s.pool, "assessments",
		[]string{"id", "vertical", "profile", "vector", "premium", "overall_risk", "created_at"},
		rows)
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	var profileJSON, vectorJSON, premiumJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, vertical, profile, vector, premium, created_at FROM assessments WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Vertical, &profileJSON, &vectorJSON, &premiumJSON, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFound(id)
		}
		return nil, eris.Wrapf(err, "postgres: get assessment %s", id)
	}
	if err := unmarshalAssessment(&a, profileJSON, vectorJSON, premiumJSON); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	query := `SELECT id, vertical, profile, vector, premium, created_at FROM assessments WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Vertical != "" {
		query += fmt.Sprintf(` AND vertical = $%d`, argIdx)
		args = append(args, filter.Vertical)
		argIdx++
	}
	if filter.MinRisk > 0 {
		query += fmt.Sprintf(` AND overall_risk >= $%d`, argIdx)
		args = append(args, filter.MinRisk)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		var profileJSON, vectorJSON, premiumJSON []byte
		if err := rows.Scan(&a.ID, &a.Vertical, &profileJSON, &vectorJSON, &premiumJSON, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		if err := unmarshalAssessment(&a, profileJSON, vectorJSON, premiumJSON); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list assessments iterate")
}
