package model

import "time"

// QuestionnaireKind identifies a standardized screening instrument
type QuestionnaireKind string

const (
	KindPHQ9 QuestionnaireKind = "phq9" // 9-item depression screen, 0-27
	KindGAD7 QuestionnaireKind = "gad7" // 7-item anxiety screen, 0-21
)

// Option is one selectable answer for a question
type Option struct {
	Value int    `json:"value" bson:"value"`
	Label string `json:"label" bson:"label"`
}

// Question is a single item in a questionnaire definition
type Question struct {
	ID      int      `json:"id" bson:"id"`
	Prompt  string   `json:"prompt" bson:"prompt"`
	Options []Option `json:"options" bson:"options"`
}

// QuestionnaireDefinition is an immutable instrument template. Definitions are
// seeded once and served read-only; scoring validates responses against them.
type QuestionnaireDefinition struct {
	ID        string            `json:"id" bson:"_id,omitempty"`
	Kind      QuestionnaireKind `json:"kind" bson:"kind"`
	Title     string            `json:"title" bson:"title"`
	Questions []Question        `json:"questions" bson:"questions"`
	CreatedAt time.Time         `json:"createdAt" bson:"createdAt"`
}

// MaxScore is the highest total a fully answered questionnaire can reach
func (d *QuestionnaireDefinition) MaxScore() int {
	total := 0
	for _, q := range d.Questions {
		max := 0
		for _, o := range q.Options {
			if o.Value > max {
				max = o.Value
			}
		}
		total += max
	}
	return total
}

// OptionValues returns the valid values for a question id, or nil if unknown
func (d *QuestionnaireDefinition) OptionValues(questionID int) []int {
	for _, q := range d.Questions {
		if q.ID == questionID {
			values := make([]int, len(q.Options))
			for i, o := range q.Options {
				values[i] = o.Value
			}
			return values
		}
	}
	return nil
}
