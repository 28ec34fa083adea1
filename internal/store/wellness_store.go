package store

import (
	"context"
	"encoding/json"
	"fmt"

	"campuswell/internal/model"
)

const activityFeedLimit = 10

// WellnessStore persists mood surveys and the per-subject activity feed
type WellnessStore interface {
	SaveSurvey(ctx context.Context, survey *model.MoodSurvey) error
	LatestSurvey(ctx context.Context, subjectID string) (*model.MoodSurvey, error)
	RecordActivity(ctx context.Context, subjectID string, activity model.Activity) error
	RecentActivities(ctx context.Context, subjectID string) ([]model.Activity, error)
}

type wellnessStore struct {
	kv KV
}

// NewWellnessStore creates a wellness store over the KV gateway
func NewWellnessStore(kv KV) WellnessStore {
	return &wellnessStore{kv: kv}
}

func surveyKey(subjectID, id string) string {
	return fmt.Sprintf("mood_survey:%s:%s", subjectID, id)
}

func activityKey(subjectID string) string {
	return "activity:" + subjectID
}

func (s *wellnessStore) SaveSurvey(ctx context.Context, survey *model.MoodSurvey) error {
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, surveyKey(survey.SubjectID, survey.ID), string(data)); err != nil {
		return err
	}
	return s.kv.Set(ctx, surveyKey(survey.SubjectID, "latest"), string(data))
}

func (s *wellnessStore) LatestSurvey(ctx context.Context, subjectID string) (*model.MoodSurvey, error) {
	raw, ok, err := s.kv.Get(ctx, surveyKey(subjectID, "latest"))
	if err != nil {
		return nil, err
	}
	if ok {
		var survey model.MoodSurvey
		if err := json.Unmarshal([]byte(raw), &survey); err != nil {
			return nil, err
		}
		return &survey, nil
	}

	// Pointer missing: the survey write may have landed first
	values, err := s.kv.GetByPrefix(ctx, surveyKey(subjectID, ""))
	if err != nil {
		return nil, err
	}
	var latest *model.MoodSurvey
	for _, raw := range values {
		var survey model.MoodSurvey
		if err := json.Unmarshal([]byte(raw), &survey); err != nil {
			continue
		}
		if latest == nil || survey.SubmittedAt.After(latest.SubmittedAt) {
			latest = &survey
		}
	}
	return latest, nil
}

func (s *wellnessStore) RecordActivity(ctx context.Context, subjectID string, activity model.Activity) error {
	activities, err := s.RecentActivities(ctx, subjectID)
	if err != nil {
		return err
	}
	activities = append([]model.Activity{activity}, activities...)
	if len(activities) > activityFeedLimit {
		activities = activities[:activityFeedLimit]
	}
	data, err := json.Marshal(activities)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, activityKey(subjectID), string(data))
}

func (s *wellnessStore) RecentActivities(ctx context.Context, subjectID string) ([]model.Activity, error) {
	raw, ok, err := s.kv.Get(ctx, activityKey(subjectID))
	if err != nil || !ok {
		return nil, err
	}
	var activities []model.Activity
	if err := json.Unmarshal([]byte(raw), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
