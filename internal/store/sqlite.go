package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/infinity-soul/risk-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id           TEXT PRIMARY KEY,
	vertical     TEXT NOT NULL,
	profile      TEXT NOT NULL,
	vector       TEXT NOT NULL,
	premium      TEXT NOT NULL,
	overall_risk REAL NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_assessments_vertical ON assessments(vertical);
CREATE INDEX IF NOT EXISTS idx_assessments_overall_risk ON assessments(overall_risk);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, a model.Assessment) error {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, vertical, profile, vector, premium, overall_risk, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Vertical, string(profileJSON), string(vectorJSON), string(premiumJSON),
		a.Vector.OverallRisk, a.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert assessment")
}

func (s *SQLiteStore) SaveAssessments(ctx context.Context, as []model.Assessment) (int64, error) {
	if len(as) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assessments (id, vertical, profile, vector, premium, overall_risk, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	var n int64
	for i, a := range as {
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
		if _, err := stmt.ExecContext(ctx,
			a.ID, a.Vertical, string(profileJSON), string(vectorJSON), string(premiumJSON),
			a.Vector.OverallRisk, a.CreatedAt,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert assessment %d", i)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, vertical, profile, vector, premium, created_at FROM assessments WHERE id = ?`,
		id,
	)

	var a model.Assessment
	var profileJSON, vectorJSON, premiumJSON string
	err := row.Scan(&a.ID, &a.Vertical, &profileJSON, &vectorJSON, &premiumJSON, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get assessment %s", id)
	}
	if err := unmarshalAssessment(&a, []byte(profileJSON), []byte(vectorJSON), []byte(premiumJSON)); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	query := `SELECT id, vertical, profile, vector, premium, created_at FROM assessments WHERE 1=1`
	var args []any

	if filter.Vertical != "" {
		query += ` AND vertical = ?`
		args = append(args, filter.Vertical)
	}
	if filter.MinRisk > 0 {
		query += ` AND overall_risk >= ?`
		args = append(args, filter.MinRisk)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		var profileJSON, vectorJSON, premiumJSON string
		if err := rows.Scan(&a.ID, &a.Vertical, &profileJSON, &vectorJSON, &premiumJSON, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assessment")
		}
		if err := unmarshalAssessment(&a, []byte(profileJSON), []byte(vectorJSON), []byte(premiumJSON)); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list assessments iterate")
}

// helpers

func marshalAssessment(a model.Assessment) (profile, vector, premium []byte, err error) {
	if profile, err = json.Marshal(a.Profile); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal profile")
	}
	if vector, err = json.Marshal(a.Vector); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal vector")
	}
	if premium, err = json.Marshal(a.Premium); err != nil {
		return nil, nil, nil, eris.Wrap(err, "store: marshal premium")
	}
	return profile, vector, premium, nil
}

func unmarshalAssessment(a *model.Assessment, profile, vector, premium []byte) error {
	if err := json.Unmarshal(profile, &a.Profile); err != nil {
		return eris.Wrap(err, "store: unmarshal profile")
	}
	if err := json.Unmarshal(vector, &a.Vector); err != nil {
		return eris.Wrap(err, "store: unmarshal vector")
	}
	if err := json.Unmarshal(premium, &a.Premium); err != nil {
		return eris.Wrap(err, "store: unmarshal premium")
	}
	return nil
}
