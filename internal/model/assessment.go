package model

import "time"

// Assessment is one persisted analysis: the normalized profile, the computed
// vector, and the premium recommendation, stamped with the vertical that
// produced it.
type Assessment struct {
	ID        string                `json:"id"`
	Vertical  string                `json:"vertical"`
	Profile   ClientProfile         `json:"profile"`
	Vector    RiskVector            `json:"vector"`
	Premium   PremiumRecommendation `json:"premium"`
	CreatedAt time.Time             `json:"created_at"`
}
