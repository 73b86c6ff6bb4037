package engine

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/infinity-soul/risk-cli/internal/cohort"
	"github.com/infinity-soul/risk-cli/internal/model"
)

// Sub-score thresholds that trigger campus interventions.
const (
	volatilityReferThreshold   = 0.6
	stabilityCoachThreshold    = 0.4
	consistencyWatchThreshold  = 0.45
	overallEscalationThreshold = 0.8
)

// interventionRule pairs a sub-score predicate with its fixed advice text.
type interventionRule struct {
	applies func(model.RiskVector) bool
	advice  string
}

var interventionRules = []interventionRule{
	{
		applies: func(v model.RiskVector) bool { return v.EmotionalVolatility > volatilityReferThreshold },
		advice:  "Refer to counseling and mental health services.",
	},
	{
		applies: func(v model.RiskVector) bool { return v.StabilityScore < stabilityCoachThreshold },
		advice:  "Assign an academic success coach and review course load.",
	},
	{
		applies: func(v model.RiskVector) bool { return v.BehavioralConsistency < consistencyWatchThreshold },
		advice:  "Enroll in attendance and engagement monitoring.",
	},
	{
		applies: func(v model.RiskVector) bool { return v.OverallRisk >= overallEscalationThreshold },
		advice:  "Escalate to the crisis response team for immediate review.",
	},
}

func interventionsFor(v model.RiskVector) []string {
	var advice []string
	for _, rule := range interventionRules {
		if rule.applies(v) {
			advice = append(advice, rule.advice)
		}
	}
	return advice
}

// FlaggedIndividual is one cohort member at or above the flag threshold.
type FlaggedIndividual struct {
	Index         int              `json:"index"`
	Name          string           `json:"name,omitempty"`
	Vector        model.RiskVector `json:"vector"`
	Interventions []string         `json:"interventions"`
}

// CampusCohortResult holds the flagged individuals (descending by overall
// risk) and the cohort summary.
type CampusCohortResult struct {
	Flagged []FlaggedIndividual `json:"flagged_individuals"`
	Summary cohort.Statistics   `json:"cohort_summary"`
}

// AnalyzeCampusCohort computes vectors for every payload, keeps those at or
// above the threshold (default 0.6), sorts them descending by overall risk,
// and attaches intervention advice per triggered sub-score.
func (e *Engine) AnalyzeCampusCohort(payloads []map[string]any, threshold float64) (*CampusCohortResult, error) {
	if threshold == 0 {
		threshold = cohort.DefaultFlagThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, model.Invalid("threshold", "must be in [0,1]")
	}

	batch, err := e.AnalyzeBatch(payloads)
	if err != nil {
		return nil, eris.Wrap(err, "engine: campus cohort")
	}

	var flagged []FlaggedIndividual
	vectors := make([]model.RiskVector, 0, len(batch.Analyses))
	for _, a := range batch.Analyses {
		vectors = append(vectors, a.Vector)
		if a.Vector.OverallRisk >= threshold {
			flagged = append(flagged, FlaggedIndividual{
				Index:         a.Index,
				Name:          a.Profile.Name,
				Vector:        a.Vector,
				Interventions: interventionsFor(a.Vector),
			})
		}
	}

	// Descending by overall risk; ties keep input order.
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Vector.OverallRisk > flagged[j].Vector.OverallRisk
	})

	return &CampusCohortResult{
		Flagged: flagged,
		Summary: cohort.Aggregate(vectors, threshold),
	}, nil
}
