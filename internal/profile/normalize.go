// Package profile normalizes arbitrary intake payloads into typed
// ClientProfile records. Coercion happens once at this boundary; everything
// downstream operates on fully-typed data.
package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/infinity-soul/risk-cli/internal/model"
)

// Defaults applied to absent fields. Security controls default to absent
// (false) and backups to none so that a sparse payload rates conservatively.
const (
	defaultEngagement = 0.5
	defaultBackup     = model.BackupNone
)

// aliases maps each canonical field to the payload keys that may carry it.
// The canonical key itself is always accepted and checked first.
var aliases = map[string][]string{
	"revenue":           {"annual_revenue"},
	"employee_count":    {"employees", "headcount"},
	"industry":          nil,
	"name":              {"company", "company_name"},
	"state":             nil,
	"has_mfa":           {"mfa_enabled"},
	"has_edr":           {"edr_deployed"},
	"backup_frequency":  {"backup_cadence"},
	"prior_claims":      {"claim_count"},
	"incident_reports":  {"incidents"},
	"engagement":        {"engagement_score"},
	"tenure_months":     {"tenure"},
	"support_program":   {"has_support_program"},
	"schedule_variance": nil,
}

// Normalize converts an untyped intake payload into a ClientProfile.
// Recognized fields are coerced when the coercion is unambiguous; absent
// fields receive documented defaults; malformed or out-of-range values
// produce a ValidationError naming the offending field. Unrecognized keys
// are preserved in Extensions.
func Normalize(payload map[string]any) (model.ClientProfile, error) {
	p := model.ClientProfile{
		Engagement:      defaultEngagement,
		BackupFrequency: defaultBackup,
		SupportProgram:  true,
	}

	if rev, ok, err := lookupInt64(payload, "revenue"); err != nil {
		return p, err
	} else if ok {
		if rev < 0 {
			return p, model.Invalid("revenue", "must be >= 0")
		}
		p.Revenue = rev
	}

	if n, ok, err := lookupInt(payload, "employee_count"); err != nil {
		return p, err
	} else if ok {
		if n < 0 {
			return p, model.Invalid("employee_count", "must be >= 0")
		}
		p.EmployeeCount = n
	}

	if s, ok, err := lookupString(payload, "industry"); err != nil {
		return p, err
	} else if ok {
		p.Industry = s
	}
	if s, ok, err := lookupString(payload, "name"); err != nil {
		return p, err
	} else if ok {
		p.Name = s
	}
	if s, ok, err := lookupString(payload, "state"); err != nil {
		return p, err
	} else if ok {
		p.State = strings.ToUpper(strings.TrimSpace(s))
	}

	if b, ok, err := lookupBool(payload, "has_mfa"); err != nil {
		return p, err
	} else if ok {
		p.HasMFA = b
	}
	if b, ok, err := lookupBool(payload, "has_edr"); err != nil {
		return p, err
	} else if ok {
		p.HasEDR = b
	}

	if s, ok, err := lookupString(payload, "backup_frequency"); err != nil {
		return p, err
	} else if ok {
		freq := model.BackupFrequency(strings.ToLower(strings.TrimSpace(s)))
		if !freq.Valid() {
			return p, model.Invalid("backup_frequency", fmt.Sprintf("unrecognized value %q", s))
		}
		p.BackupFrequency = freq
	}

	if n, ok, err := lookupInt(payload, "prior_claims"); err != nil {
		return p, err
	} else if ok {
		if n < 0 {
			return p, model.Invalid("prior_claims", "must be >= 0")
		}
		p.PriorClaims = n
	}

	if n, ok, err := lookupInt(payload, "incident_reports"); err != nil {
		return p, err
	} else if ok {
		if n < 0 {
			return p, model.Invalid("incident_reports", "must be >= 0")
		}
		p.IncidentReports = n
	}

	if f, ok, err := lookupFloat(payload, "engagement"); err != nil {
		return p, err
	} else if ok {
		if f < 0 || f > 1 {
			return p, model.Invalid("engagement", "must be in [0,1]")
		}
		p.Engagement = f
	}

	if n, ok, err := lookupInt(payload, "tenure_months"); err != nil {
		return p, err
	} else if ok {
		if n < 0 {
			return p, model.Invalid("tenure_months", "must be >= 0")
		}
		p.TenureMonths = n
	}

	if b, ok, err := lookupBool(payload, "support_program"); err != nil {
		return p, err
	} else if ok {
		p.SupportProgram = b
	}

	if f, ok, err := lookupFloat(payload, "schedule_variance"); err != nil {
		return p, err
	} else if ok {
		if f < 0 || f > 1 {
			return p, model.Invalid("schedule_variance", "must be in [0,1]")
		}
		p.ScheduleVariance = f
	}

	p.Extensions = collectExtensions(payload)
	return p, nil
}

// recognizedKeys is the flattened set of canonical keys plus aliases.
var recognizedKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for canonical, alts := range aliases {
		keys[canonical] = struct{}{}
		for _, a := range alts {
			keys[a] = struct{}{}
		}
	}
	return keys
}()

func collectExtensions(payload map[string]any) map[string]any {
	var ext map[string]any
	for k, v := range payload {
		if _, ok := recognizedKeys[k]; ok {
			continue
		}
		if ext == nil {
			ext = make(map[string]any)
		}
		ext[k] = v
	}
	return ext
}

// lookup finds the first present alias for a canonical field.
func lookup(payload map[string]any, canonical string) (string, any, bool) {
	if v, ok := payload[canonical]; ok {
		return canonical, v, true
	}
	for _, a := range aliases[canonical] {
		if v, ok := payload[a]; ok {
			return a, v, true
		}
	}
	return "", nil, false
}

func lookupString(payload map[string]any, canonical string) (string, bool, error) {
	key, v, ok := lookup(payload, canonical)
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, model.Invalid(key, fmt.Sprintf("expected a string, got %T", v))
	}
	return s, true, nil
}

func lookupFloat(payload map[string]any, canonical string) (float64, bool, error) {
	key, v, ok := lookup(payload, canonical)
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := coerceFloat(key, v)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

func lookupInt64(payload map[string]any, canonical string) (int64, bool, error) {
	key, v, ok := lookup(payload, canonical)
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := coerceFloat(key, v)
	if err != nil {
		return 0, false, err
	}
	if f != math.Trunc(f) {
		return 0, false, model.Invalid(key, "must be a whole number")
	}
	return int64(f), true, nil
}

func lookupInt(payload map[string]any, canonical string) (int, bool, error) {
	n, ok, err := lookupInt64(payload, canonical)
	return int(n), ok, err
}

func lookupBool(payload map[string]any, canonical string) (bool, bool, error) {
	key, v, ok := lookup(payload, canonical)
	if !ok || v == nil {
		return false, false, nil
	}
	switch t := v.(type) {
	case bool:
		return t, true, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1":
			return true, true, nil
		case "false", "no", "n", "0":
			return false, true, nil
		}
		return false, false, model.Invalid(key, fmt.Sprintf("cannot interpret %q as boolean", t))
	case float64:
		if t == 0 || t == 1 {
			return t == 1, true, nil
		}
	case int:
		if t == 0 || t == 1 {
			return t == 1, true, nil
		}
	case json.Number:
		switch t.String() {
		case "1":
			return true, true, nil
		case "0":
			return false, true, nil
		}
	}
	return false, false, model.Invalid(key, "cannot interpret value as boolean")
}

// coerceFloat accepts the numeric shapes JSON decoding and CLI parsing
// produce: float64, int, int64, json.Number, and numeric strings.
func coerceFloat(key string, v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, model.Invalid(key, fmt.Sprintf("cannot parse %q as number", t.String()))
		}
		return f, nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, model.Invalid(key, fmt.Sprintf("cannot parse %q as number", t))
		}
		return f, nil
	}
	return 0, model.Invalid(key, fmt.Sprintf("unsupported type %T", v))
}
