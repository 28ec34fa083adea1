package model

import "time"

// FeeStatus is the student's fee payment state
type FeeStatus string

const (
	FeePaid    FeeStatus = "paid"
	FeePending FeeStatus = "pending"
	FeeOverdue FeeStatus = "overdue"
)

// StudentSignals holds the latest known raw values for one subject. A nil
// pointer means the signal was never observed for this student; the classifier
// must skip it rather than substitute a default in either direction.
type StudentSignals struct {
	SubjectID     string    `json:"subjectId"`
	AttendancePct *float64  `json:"attendancePct,omitempty"` // 0-100
	BacklogCount  *int      `json:"backlogCount,omitempty"`  // >= 0
	StressScore   *float64  `json:"stressScore,omitempty"`   // 0-10, from mood surveys
	GPA           *float64  `json:"gpa,omitempty"`           // 0.0-4.0
	FeeStatus     FeeStatus `json:"feeStatus,omitempty"`
	// SeverityBands maps questionnaire kind to the band of the latest assessment
	SeverityBands map[QuestionnaireKind]string `json:"severityBands,omitempty"`
	ObservedAt    time.Time                    `json:"observedAt"`
}

// UnknownSignals lists the signal names with no observation on file
func (s *StudentSignals) UnknownSignals() []string {
	var unknown []string
	if s.AttendancePct == nil {
		unknown = append(unknown, "attendance")
	}
	if s.BacklogCount == nil {
		unknown = append(unknown, "backlogs")
	}
	if s.StressScore == nil {
		unknown = append(unknown, "stress")
	}
	if s.GPA == nil {
		unknown = append(unknown, "gpa")
	}
	if s.FeeStatus == "" {
		unknown = append(unknown, "fees")
	}
	if len(s.SeverityBands) == 0 {
		unknown = append(unknown, "questionnaire")
	}
	return unknown
}
