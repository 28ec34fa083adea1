package model

import "time"

// Assessment is one completed, scored questionnaire submission. Assessments are
// immutable after creation; a newer submission of the same kind supersedes this
// one through the latest pointer, it never mutates it.
type Assessment struct {
	ID           string            `json:"id"`
	SubjectID    string            `json:"subjectId"`
	Kind         QuestionnaireKind `json:"kind"`
	Responses    map[int]int       `json:"responses"` // question id -> selected value
	TotalScore   int               `json:"totalScore"`
	SeverityBand string            `json:"severityBand"`
	CompletedAt  time.Time         `json:"completedAt"`
}

// ScoreResult is what the scorer returns for a valid submission
type ScoreResult struct {
	TotalScore   int    `json:"totalScore"`
	SeverityBand string `json:"severityBand"`
}
