package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/store"
)

// AssessmentService handles questionnaire submission: scoring, persistence,
// risk recomputation and alerting. Risk and alerting are best-effort: once
// the assessment is saved the student gets their confirmation even if the
// downstream steps fail, which are then logged for follow-up.
type AssessmentService struct {
	questionnaires repository.QuestionnaireRepo
	scorer         *ScoringService
	assessments    store.AssessmentStore
	wellness       store.WellnessStore
	riskSvc        *RiskService
	alertSvc       *AlertService
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	questionnaires repository.QuestionnaireRepo,
	scorer *ScoringService,
	assessments store.AssessmentStore,
	wellness store.WellnessStore,
	riskSvc *RiskService,
	alertSvc *AlertService,
) *AssessmentService {
	return &AssessmentService{
		questionnaires: questionnaires,
		scorer:         scorer,
		assessments:    assessments,
		wellness:       wellness,
		riskSvc:        riskSvc,
		alertSvc:       alertSvc,
	}
}

// Definitions lists the available questionnaire instruments
func (s *AssessmentService) Definitions(ctx context.Context) ([]*model.QuestionnaireDefinition, error) {
	return s.questionnaires.List(ctx)
}

// Definition returns one instrument by kind, or nil
func (s *AssessmentService) Definition(ctx context.Context, kind model.QuestionnaireKind) (*model.QuestionnaireDefinition, error) {
	return s.questionnaires.GetByKind(ctx, kind)
}

// Submit scores and persists a completed questionnaire, then recomputes the
// subject's risk profile and evaluates alerting.
func (s *AssessmentService) Submit(ctx context.Context, subjectID string, kind model.QuestionnaireKind, responses map[int]int) (*model.Assessment, *model.RiskProfile, error) {
	def, err := s.questionnaires.GetByKind(ctx, kind)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load questionnaire definition: %w", err)
	}
	if def == nil {
		return nil, nil, model.NewValidationError("questionnaireKind", fmt.Sprintf("unknown kind %q", kind))
	}

	result, err := s.scorer.Score(def, responses)
	if err != nil {
		return nil, nil, err
	}

	assessment := &model.Assessment{
		ID:           uuid.New().String(),
		SubjectID:    subjectID,
		Kind:         kind,
		Responses:    responses,
		TotalScore:   result.TotalScore,
		SeverityBand: result.SeverityBand,
		CompletedAt:  time.Now(),
	}
	if err := s.assessments.Save(ctx, assessment); err != nil {
		return nil, nil, fmt.Errorf("failed to persist assessment: %w", err)
	}

	if err := s.wellness.RecordActivity(ctx, subjectID, model.Activity{
		Type:      "assessment",
		Message:   fmt.Sprintf("%s completed: %s (%d)", def.Title, result.SeverityBand, result.TotalScore),
		Timestamp: assessment.CompletedAt,
	}); err != nil {
		log.Printf("Failed to record assessment activity for %s: %v", subjectID, err)
	}

	profile := s.recomputeAndAlert(ctx, subjectID)
	return assessment, profile, nil
}

// History returns all stored assessments of one kind for a subject
func (s *AssessmentService) History(ctx context.Context, subjectID string, kind model.QuestionnaireKind) ([]*model.Assessment, error) {
	return s.assessments.History(ctx, subjectID, kind)
}

// Latest returns the most recent assessment of one kind, or nil
func (s *AssessmentService) Latest(ctx context.Context, subjectID string, kind model.QuestionnaireKind) (*model.Assessment, error) {
	return s.assessments.Latest(ctx, subjectID, kind)
}

func (s *AssessmentService) recomputeAndAlert(ctx context.Context, subjectID string) *model.RiskProfile {
	previous, profile, err := s.riskSvc.Recompute(ctx, subjectID)
	if err != nil {
		log.Printf("Risk recompute failed for %s: %v", subjectID, err)
		return nil
	}
	if _, err := s.alertSvc.RaiseForTransition(ctx, previous, profile); err != nil {
		log.Printf("Alert dispatch failed for %s: %v", subjectID, err)
	}
	return profile
}
