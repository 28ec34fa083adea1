package model

import "time"

// MoodSurvey is one daily self-reported check-in
type MoodSurvey struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subjectId"`
	MoodRating  int       `json:"moodRating"`  // 1-10
	StressLevel float64   `json:"stressLevel"` // 0-10
	FocusLevel  int       `json:"focusLevel"`  // 1-10
	Notes       string    `json:"notes,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Activity is one entry in a subject's recent activity feed
type Activity struct {
	Type      string    `json:"type"` // survey, assessment, alert, resource
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardData is the student dashboard payload
type DashboardData struct {
	StressLevel      *float64   `json:"stressLevel,omitempty"`
	RiskTier         Tier       `json:"riskTier,omitempty"`
	RecentActivities []Activity `json:"recentActivities"`
	LastSurveyAt     *time.Time `json:"lastSurveyAt,omitempty"`
}
