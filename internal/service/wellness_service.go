package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"campuswell/internal/model"
	"campuswell/internal/store"
)

// WellnessService handles daily mood check-ins and the student dashboard
type WellnessService struct {
	wellness store.WellnessStore
	risk     store.RiskStore
	riskSvc  *RiskService
	alertSvc *AlertService
}

// NewWellnessService creates a new wellness service
func NewWellnessService(wellness store.WellnessStore, risk store.RiskStore, riskSvc *RiskService, alertSvc *AlertService) *WellnessService {
	return &WellnessService{
		wellness: wellness,
		risk:     risk,
		riskSvc:  riskSvc,
		alertSvc: alertSvc,
	}
}

// SubmitSurvey validates and persists a mood survey, then recomputes risk.
// The survey save is authoritative; recompute/alert failures are logged and
// the student still gets confirmation that their data was saved.
func (s *WellnessService) SubmitSurvey(ctx context.Context, subjectID string, moodRating int, stressLevel float64, focusLevel int, notes string) (*model.MoodSurvey, error) {
	if moodRating < 1 || moodRating > 10 {
		return nil, model.NewValidationError("moodRating", "must be between 1 and 10")
	}
	if stressLevel < 0 || stressLevel > 10 {
		return nil, model.NewValidationError("stressLevel", "must be between 0 and 10")
	}
	if focusLevel < 1 || focusLevel > 10 {
		return nil, model.NewValidationError("focusLevel", "must be between 1 and 10")
	}

	survey := &model.MoodSurvey{
		ID:          uuid.New().String(),
		SubjectID:   subjectID,
		MoodRating:  moodRating,
		StressLevel: stressLevel,
		FocusLevel:  focusLevel,
		Notes:       notes,
		SubmittedAt: time.Now(),
	}
	if err := s.wellness.SaveSurvey(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to persist mood survey: %w", err)
	}

	if err := s.wellness.RecordActivity(ctx, subjectID, model.Activity{
		Type:      "survey",
		Message:   "Daily mood survey completed",
		Timestamp: survey.SubmittedAt,
	}); err != nil {
		log.Printf("Failed to record survey activity for %s: %v", subjectID, err)
	}

	previous, profile, err := s.riskSvc.Recompute(ctx, subjectID)
	if err != nil {
		log.Printf("Risk recompute failed for %s: %v", subjectID, err)
		return survey, nil
	}
	if _, err := s.alertSvc.RaiseForTransition(ctx, previous, profile); err != nil {
		log.Printf("Alert dispatch failed for %s: %v", subjectID, err)
	}
	return survey, nil
}

// Dashboard assembles the student-facing dashboard payload
func (s *WellnessService) Dashboard(ctx context.Context, subjectID string) (*model.DashboardData, error) {
	data := &model.DashboardData{}

	survey, err := s.wellness.LatestSurvey(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if survey != nil {
		stress := survey.StressLevel
		data.StressLevel = &stress
		submittedAt := survey.SubmittedAt
		data.LastSurveyAt = &submittedAt
	}

	profile, err := s.risk.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		data.RiskTier = profile.Tier
	}

	activities, err := s.wellness.RecentActivities(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	data.RecentActivities = activities

	return data, nil
}
