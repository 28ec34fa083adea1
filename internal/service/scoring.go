package service

import (
	"fmt"

	"campuswell/internal/config"
	"campuswell/internal/model"
)

// ScoringService maps completed questionnaire responses to a total score and
// severity band. It is pure: persistence belongs to the caller.
type ScoringService struct {
	cfg *config.RiskConfig
}

// NewScoringService creates a new scoring service
func NewScoringService(cfg *config.RiskConfig) *ScoringService {
	return &ScoringService{cfg: cfg}
}

// Score validates responses against the definition and returns the total and
// band. Incomplete or out-of-range responses yield a ValidationError naming
// the question; a malformed band table yields a ConfigError.
func (s *ScoringService) Score(def *model.QuestionnaireDefinition, responses map[int]int) (*model.ScoreResult, error) {
	if def == nil || len(def.Questions) == 0 {
		return nil, &model.ConfigError{Detail: "empty questionnaire definition"}
	}

	if err := s.cfg.ValidateBands(def.Kind, def.MaxScore()); err != nil {
		return nil, err
	}

	known := make(map[int]bool, len(def.Questions))
	total := 0
	for _, q := range def.Questions {
		known[q.ID] = true
		value, ok := responses[q.ID]
		if !ok {
			return nil, model.NewValidationError(
				fmt.Sprintf("question_%d", q.ID), "no response submitted")
		}
		if !hasValue(def.OptionValues(q.ID), value) {
			return nil, model.NewValidationError(
				fmt.Sprintf("question_%d", q.ID),
				fmt.Sprintf("value %d is not a valid option", value))
		}
		total += value
	}
	for id := range responses {
		if !known[id] {
			return nil, model.NewValidationError(
				fmt.Sprintf("question_%d", id), "not part of this questionnaire")
		}
	}

	band, err := s.cfg.BandFor(def.Kind, total)
	if err != nil {
		return nil, err
	}
	return &model.ScoreResult{TotalScore: total, SeverityBand: band}, nil
}

func hasValue(values []int, value int) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
