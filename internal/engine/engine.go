// Package engine orchestrates the risk core: normalize, compute the risk
// vector, recommend a premium, and aggregate cohorts and portfolios. Every
// operation is a pure function of its arguments plus the immutable
// configuration captured at construction.
package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/infinity-soul/risk-cli/internal/cohort"
	"github.com/infinity-soul/risk-cli/internal/model"
	"github.com/infinity-soul/risk-cli/internal/premium"
	"github.com/infinity-soul/risk-cli/internal/profile"
	"github.com/infinity-soul/risk-cli/internal/riskvec"
)

// DefaultBaselinePremium is applied when the configuration leaves the
// baseline unset.
const DefaultBaselinePremium = 1000

// DefaultLossRatioEstimate is a placeholder pending real loss experience
// data; it is reported in portfolio summaries, never used in rating.
const DefaultLossRatioEstimate = 0.65

// Config captures everything an Engine needs at construction. Zero values
// fall back to documented defaults; no process-wide singletons are involved.
type Config struct {
	// Vertical selects the default weight table ("insurance" or "campus").
	Vertical string

	// BaselinePremium must be positive; default 1000.
	BaselinePremium float64

	// FlagThreshold marks individuals in cohort statistics; default 0.6.
	FlagThreshold float64

	// LossRatioEstimate is echoed in portfolio summaries; default 0.65.
	LossRatioEstimate float64

	// Weights overrides the vertical's default weight table when non-nil.
	Weights *riskvec.WeightTable

	// Rating overrides the premium rating parameters when non-nil.
	Rating *premium.Rating
}

// Engine is stateless after construction and safe for concurrent use.
type Engine struct {
	vertical      string
	baseline      float64
	flagThreshold float64
	lossRatio     float64
	weights       riskvec.WeightTable
	rating        premium.Rating
}

// New validates the configuration and resolves defaults.
func New(cfg Config) (*Engine, error) {
	weights, err := riskvec.DefaultsFor(cfg.Vertical)
	if err != nil {
		return nil, err
	}
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}
	if err := riskvec.Validate(weights); err != nil {
		return nil, err
	}

	baseline := cfg.BaselinePremium
	if baseline == 0 {
		baseline = DefaultBaselinePremium
	}
	if baseline <= 0 {
		return nil, model.Invalid("baseline_premium", "must be > 0")
	}

	flagThreshold := cfg.FlagThreshold
	if flagThreshold == 0 {
		flagThreshold = cohort.DefaultFlagThreshold
	}
	if flagThreshold < 0 || flagThreshold > 1 {
		return nil, model.Invalid("flag_threshold", "must be in [0,1]")
	}

	lossRatio := cfg.LossRatioEstimate
	if lossRatio == 0 {
		lossRatio = DefaultLossRatioEstimate
	}

	rating := premium.DefaultRating()
	if cfg.Rating != nil {
		rating = *cfg.Rating
	}

	vertical := cfg.Vertical
	if vertical == "" {
		vertical = "insurance"
	}

	return &Engine{
		vertical:      vertical,
		baseline:      baseline,
		flagThreshold: flagThreshold,
		lossRatio:     lossRatio,
		weights:       weights,
		rating:        rating,
	}, nil
}

// Vertical returns the configured vertical name.
func (e *Engine) Vertical() string { return e.vertical }

// Weights returns a copy of the active weight table.
func (e *Engine) Weights() riskvec.WeightTable { return e.weights }

// Analysis is the result of analyzing a single payload.
type Analysis struct {
	Index   int                         `json:"index"`
	Profile model.ClientProfile         `json:"profile"`
	Vector  model.RiskVector            `json:"vector"`
	Premium model.PremiumRecommendation `json:"premium"`
}

// Analyze normalizes a payload, computes its risk vector, and recommends a
// premium. Deterministic: the same payload always yields the same result.
func (e *Engine) Analyze(payload map[string]any) (*Analysis, error) {
	p, err := profile.Normalize(payload)
	if err != nil {
		return nil, eris.Wrap(err, "engine: normalize")
	}

	vector := riskvec.Compute(p, e.weights)

	rec, err := premium.Suggest(p, vector, e.baseline, e.rating)
	if err != nil {
		return nil, eris.Wrap(err, "engine: suggest premium")
	}

	return &Analysis{Profile: p, Vector: vector, Premium: rec}, nil
}

// BatchResult pairs per-record analyses with cohort statistics over the
// resulting vectors.
type BatchResult struct {
	Analyses    []Analysis        `json:"analyses"`
	CohortStats cohort.Statistics `json:"cohort_stats"`
}

// AnalyzeBatch maps Analyze over the payloads and aggregates the vectors.
// A malformed record fails the whole batch with its index named.
func (e *Engine) AnalyzeBatch(payloads []map[string]any) (*BatchResult, error) {
	analyses := make([]Analysis, 0, len(payloads))
	vectors := make([]model.RiskVector, 0, len(payloads))

	for i, payload := range payloads {
		a, err := e.Analyze(payload)
		if err != nil {
			return nil, eris.Wrapf(err, "engine: batch record %d", i)
		}
		a.Index = i
		analyses = append(analyses, *a)
		vectors = append(vectors, a.Vector)
	}

	stats := cohort.Aggregate(vectors, e.flagThreshold)

	zap.L().Info("engine: batch analyzed",
		zap.String("vertical", e.vertical),
		zap.Int("records", len(analyses)),
		zap.Int("flagged", stats.Flagged),
	)

	return &BatchResult{Analyses: analyses, CohortStats: stats}, nil
}

// AnalyzeBatchParallel is AnalyzeBatch with bounded concurrency. Results
// keep input order regardless of completion order.
func (e *Engine) AnalyzeBatchParallel(ctx context.Context, payloads []map[string]any, concurrency int) (*BatchResult, error) {
	if concurrency <= 1 {
		return e.AnalyzeBatch(payloads)
	}

	analyses := make([]Analysis, len(payloads))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, payload := range payloads {
		g.Go(func() error {
			a, err := e.Analyze(payload)
			if err != nil {
				return eris.Wrapf(err, "engine: batch record %d", i)
			}
			a.Index = i
			analyses[i] = *a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vectors := make([]model.RiskVector, len(analyses))
	for i, a := range analyses {
		vectors[i] = a.Vector
	}
	stats := cohort.Aggregate(vectors, e.flagThreshold)

	zap.L().Info("engine: batch analyzed",
		zap.String("vertical", e.vertical),
		zap.Int("records", len(analyses)),
		zap.Int("concurrency", concurrency),
		zap.Int("flagged", stats.Flagged),
	)

	return &BatchResult{Analyses: analyses, CohortStats: stats}, nil
}
