// Package model defines the core records shared across the risk engine:
// normalized client profiles, risk vectors, premium recommendations, and
// persisted assessments.
package model

// BackupFrequency describes how often an entity backs up its data.
type BackupFrequency string

const (
	BackupDaily   BackupFrequency = "daily"
	BackupWeekly  BackupFrequency = "weekly"
	BackupMonthly BackupFrequency = "monthly"
	BackupNone    BackupFrequency = "none"
)

// Valid reports whether f is one of the recognized backup frequencies.
func (f BackupFrequency) Valid() bool {
	switch f {
	case BackupDaily, BackupWeekly, BackupMonthly, BackupNone:
		return true
	}
	return false
}

// ClientProfile is the normalized, fully-typed input record for one entity
// being risk-scored. It is constructed once per request by the profile
// normalizer and never mutated afterwards.
type ClientProfile struct {
	Name     string `json:"name,omitempty"`
	State    string `json:"state,omitempty"`
	Industry string `json:"industry,omitempty"`

	// Firmographics.
	Revenue       int64 `json:"revenue"`
	EmployeeCount int   `json:"employee_count"`

	// Security controls.
	HasMFA          bool            `json:"has_mfa"`
	HasEDR          bool            `json:"has_edr"`
	BackupFrequency BackupFrequency `json:"backup_frequency"`
	PriorClaims     int             `json:"prior_claims"`

	// Behavioral signals (campus / wellbeing verticals).
	IncidentReports  int     `json:"incident_reports"`
	Engagement       float64 `json:"engagement"`
	TenureMonths     int     `json:"tenure_months"`
	SupportProgram   bool    `json:"support_program"`
	ScheduleVariance float64 `json:"schedule_variance"`

	// Extensions carries unrecognized payload fields through untouched so
	// callers can round-trip vertical-specific data.
	Extensions map[string]any `json:"extensions,omitempty"`
}
