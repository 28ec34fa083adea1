package model

import "time"

// AnalyticsOverview is the admin dashboard aggregation, computed from the
// persisted risk profiles rather than mock numbers.
type AnalyticsOverview struct {
	TotalStudents   int          `json:"totalStudents"`
	ActiveToday     int          `json:"activeToday"`
	TierCounts      map[Tier]int `json:"tierCounts"`
	CrisisAlerts    int          `json:"crisisAlerts"` // students currently at critical
	AvgStressScore  float64      `json:"avgStressScore"`
	FeeOverdueCount int          `json:"feeOverdueCount"`
	ComputedAt      time.Time    `json:"computedAt"`
}
