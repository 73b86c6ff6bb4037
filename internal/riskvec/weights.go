// Package riskvec computes risk vectors from normalized client profiles.
// Every dimension follows the same shape: a fixed base, a bounded sum of
// weighted indicator contributions, then a clamp. The weight tables are the
// only domain knowledge in the system and are swappable per vertical.
package riskvec

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// WeightTable holds every tunable used by the calculator. It is fully
// serializable so vertical-specific tuning is a configuration change, not a
// code change.
type WeightTable struct {
	Loss        LossWeights        `yaml:"loss"`
	Volatility  VolatilityWeights  `yaml:"volatility"`
	Stability   StabilityWeights   `yaml:"stability"`
	Consistency ConsistencyWeights `yaml:"consistency"`
	Blend       BlendWeights       `yaml:"blend"`
}

// LossWeights drives the loss-probability dimension used for premium rating.
type LossWeights struct {
	Base              float64 `yaml:"base"`
	RevenueThreshold  int64   `yaml:"revenue_threshold"`
	RevenueLoad       float64 `yaml:"revenue_load"`
	EmployeeThreshold int     `yaml:"employee_threshold"`
	EmployeeLoad      float64 `yaml:"employee_load"`
	NoMFALoad         float64 `yaml:"no_mfa_load"`
	NoEDRLoad         float64 `yaml:"no_edr_load"`
	BackupPartialLoad float64 `yaml:"backup_partial_load"`
	BackupNoneLoad    float64 `yaml:"backup_none_load"`
	PerClaimLoad      float64 `yaml:"per_claim_load"`
	Ceiling           float64 `yaml:"ceiling"`
}

// VolatilityWeights drives the emotional-volatility dimension.
type VolatilityWeights struct {
	Base                   float64 `yaml:"base"`
	PerIncident            float64 `yaml:"per_incident"`
	NoSupportLoad          float64 `yaml:"no_support_load"`
	LowEngagementThreshold float64 `yaml:"low_engagement_threshold"`
	LowEngagementLoad      float64 `yaml:"low_engagement_load"`
	Ceiling                float64 `yaml:"ceiling"`
}

// StabilityWeights drives the stability dimension (higher is better).
type StabilityWeights struct {
	Base            float64 `yaml:"base"`
	TenureMonths    int     `yaml:"tenure_months"`
	TenureBonus     float64 `yaml:"tenure_bonus"`
	PerClaimPenalty float64 `yaml:"per_claim_penalty"`
	NoBackupPenalty float64 `yaml:"no_backup_penalty"`
	Floor           float64 `yaml:"floor"`
	Ceiling         float64 `yaml:"ceiling"`
}

// ConsistencyWeights drives the behavioral-consistency dimension (higher is
// better).
type ConsistencyWeights struct {
	Base                    float64 `yaml:"base"`
	HighEngagementThreshold float64 `yaml:"high_engagement_threshold"`
	HighEngagementBonus     float64 `yaml:"high_engagement_bonus"`
	PerIncidentPenalty      float64 `yaml:"per_incident_penalty"`
	VarianceThreshold       float64 `yaml:"variance_threshold"`
	VariancePenalty         float64 `yaml:"variance_penalty"`
	Floor                   float64 `yaml:"floor"`
	Ceiling                 float64 `yaml:"ceiling"`
}

// BlendWeights combines the four dimensions into the overall risk score.
// Instability and Inconsistency weight the inverted stability and
// consistency scores.
type BlendWeights struct {
	Loss          float64 `yaml:"loss"`
	Volatility    float64 `yaml:"volatility"`
	Instability   float64 `yaml:"instability"`
	Inconsistency float64 `yaml:"inconsistency"`
}

// Sum returns the total blend weight.
func (b BlendWeights) Sum() float64 {
	return b.Loss + b.Volatility + b.Instability + b.Inconsistency
}

// InsuranceWeights returns the default weight table for the cyber-insurance
// vertical.
func InsuranceWeights() WeightTable {
	return WeightTable{
		Loss: LossWeights{
			Base:              0.02,
			RevenueThreshold:  10_000_000,
			RevenueLoad:       0.01,
			EmployeeThreshold: 50,
			EmployeeLoad:      0.01,
			NoMFALoad:         0.015,
			NoEDRLoad:         0.015,
			BackupPartialLoad: 0.01,
			BackupNoneLoad:    0.03,
			PerClaimLoad:      0.01,
			Ceiling:           0.25,
		},
		Volatility: VolatilityWeights{
			Base:                   0.10,
			PerIncident:            0.05,
			NoSupportLoad:          0.10,
			LowEngagementThreshold: 0.4,
			LowEngagementLoad:      0.15,
			Ceiling:                0.90,
		},
		Stability: StabilityWeights{
			Base:            0.70,
			TenureMonths:    24,
			TenureBonus:     0.10,
			PerClaimPenalty: 0.05,
			NoBackupPenalty: 0.10,
			Floor:           0.05,
			Ceiling:         0.95,
		},
		Consistency: ConsistencyWeights{
			Base:                    0.65,
			HighEngagementThreshold: 0.7,
			HighEngagementBonus:     0.15,
			PerIncidentPenalty:      0.05,
			VarianceThreshold:       0.5,
			VariancePenalty:         0.10,
			Floor:                   0.05,
			Ceiling:                 0.95,
		},
		Blend: BlendWeights{
			Loss:          0.40,
			Volatility:    0.30,
			Instability:   0.15,
			Inconsistency: 0.15,
		},
	}
}

// CampusWeights returns the default weight table for the campus-wellbeing
// vertical: volatility dominates the blend and incidents carry more weight.
func CampusWeights() WeightTable {
	w := InsuranceWeights()
	w.Volatility.PerIncident = 0.08
	w.Blend = BlendWeights{
		Loss:          0.15,
		Volatility:    0.45,
		Instability:   0.20,
		Inconsistency: 0.20,
	}
	return w
}

// DefaultsFor returns the default weight table for a vertical name.
func DefaultsFor(vertical string) (WeightTable, error) {
	switch strings.ToLower(vertical) {
	case "", "insurance", "insurer":
		return InsuranceWeights(), nil
	case "campus", "university":
		return CampusWeights(), nil
	}
	return WeightTable{}, eris.Errorf("riskvec: unknown vertical %q", vertical)
}

// LoadFile merges a YAML weight override over a base table. Only keys
// present in the file are replaced, so partial files tune individual weights
// without restating the full table.
func LoadFile(path string, base WeightTable) (WeightTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "riskvec: read weights %s", path)
	}
	merged := base
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return base, eris.Wrap(err, "riskvec: parse weights")
	}
	if err := Validate(merged); err != nil {
		return base, err
	}
	return merged, nil
}

// Dump serializes a weight table to YAML.
func Dump(w WeightTable) ([]byte, error) {
	data, err := yaml.Marshal(w)
	if err != nil {
		return nil, eris.Wrap(err, "riskvec: marshal weights")
	}
	return data, nil
}

// Validate checks that a weight table is internally consistent.
func Validate(w WeightTable) error {
	var errs []string

	check := func(name string, v float64) {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	check("loss.base", w.Loss.Base)
	check("loss.revenue_load", w.Loss.RevenueLoad)
	check("loss.employee_load", w.Loss.EmployeeLoad)
	check("loss.no_mfa_load", w.Loss.NoMFALoad)
	check("loss.no_edr_load", w.Loss.NoEDRLoad)
	check("loss.backup_partial_load", w.Loss.BackupPartialLoad)
	check("loss.backup_none_load", w.Loss.BackupNoneLoad)
	check("loss.per_claim_load", w.Loss.PerClaimLoad)
	if w.Loss.Ceiling <= 0 || w.Loss.Ceiling > 1 {
		errs = append(errs, "loss.ceiling must be in (0,1]")
	}
	if w.Loss.Base > w.Loss.Ceiling {
		errs = append(errs, "loss.base must not exceed loss.ceiling")
	}

	check("volatility.base", w.Volatility.Base)
	check("volatility.per_incident", w.Volatility.PerIncident)
	check("volatility.no_support_load", w.Volatility.NoSupportLoad)
	check("volatility.low_engagement_load", w.Volatility.LowEngagementLoad)
	if w.Volatility.Ceiling <= 0 || w.Volatility.Ceiling > 1 {
		errs = append(errs, "volatility.ceiling must be in (0,1]")
	}

	for name, pair := range map[string][2]float64{
		"stability":   {w.Stability.Floor, w.Stability.Ceiling},
		"consistency": {w.Consistency.Floor, w.Consistency.Ceiling},
	} {
		if pair[0] < 0 || pair[0] > 1 {
			errs = append(errs, name+".floor must be in [0,1]")
		}
		if pair[1] <= 0 || pair[1] > 1 {
			errs = append(errs, name+".ceiling must be in (0,1]")
		}
		if pair[0] >= pair[1] {
			errs = append(errs, name+".floor must be below its ceiling")
		}
	}

	check("blend.loss", w.Blend.Loss)
	check("blend.volatility", w.Blend.Volatility)
	check("blend.instability", w.Blend.Instability)
	check("blend.inconsistency", w.Blend.Inconsistency)
	if w.Blend.Sum() <= 0 {
		errs = append(errs, "blend weight sum must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("riskvec: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
