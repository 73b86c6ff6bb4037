package store

import (
	"context"
	"errors"

	"github.com/infinity-soul/risk-cli/internal/model"
)

// AssessmentFilter specifies criteria for listing stored assessments.
type AssessmentFilter struct {
	Vertical string  `json:"vertical,omitempty"`
	MinRisk  float64 `json:"min_risk,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}

// Store defines the persistence interface for completed assessments.
type Store interface {
	SaveAssessment(ctx context.Context, a model.Assessment) error
	SaveAssessments(ctx context.Context, as []model.Assessment) (int64, error)
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error)

	Migrate(ctx context.Context) error
	Close() error
}

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "assessment not found: " + e.id }

// NotFound returns the canonical missing-assessment error. Both backends
// return it so handlers can map a miss to a 404.
func NotFound(id string) error { return &notFoundError{id: id} }

// IsNotFound reports whether err marks a missing assessment.
func IsNotFound(err error) bool {
	var nf *notFoundError
	return errors.As(err, &nf)
}
