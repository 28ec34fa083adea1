package model

import "time"

// Tier is the composite risk classification for a student
type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Weight orders tiers for worst-signal-wins aggregation and escalation checks
func (t Tier) Weight() int {
	switch t {
	case TierModerate:
		return 1
	case TierHigh:
		return 2
	case TierCritical:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether the tier is one of the four known values
func (t Tier) IsValid() bool {
	switch t {
	case TierLow, TierModerate, TierHigh, TierCritical:
		return true
	default:
		return false
	}
}

// Factor is one triggered rule's contribution to a risk profile
type Factor struct {
	Signal string `json:"signal"`
	Reason string `json:"reason"`
	Tier   Tier   `json:"tier"`
}

// RiskProfile is the derived classification for a subject. It is recomputed
// from StudentSignals on every signal update and never hand-edited.
type RiskProfile struct {
	SubjectID           string    `json:"subjectId"`
	Tier                Tier      `json:"tier"`
	ContributingFactors []Factor  `json:"contributingFactors"`
	ComputedAt          time.Time `json:"computedAt"`
}
