package store

import (
	"context"
	"encoding/json"
	"fmt"

	"campuswell/internal/model"
)

// AssessmentStore persists scored questionnaire submissions. Each submission
// gets an immutable history entry plus a per-(subject, kind) latest pointer.
// The two writes are not atomic; readers fall back to the history when the
// pointer lags behind.
type AssessmentStore interface {
	Save(ctx context.Context, a *model.Assessment) error
	Latest(ctx context.Context, subjectID string, kind model.QuestionnaireKind) (*model.Assessment, error)
	History(ctx context.Context, subjectID string, kind model.QuestionnaireKind) ([]*model.Assessment, error)
}

type assessmentStore struct {
	kv KV
}

// NewAssessmentStore creates an assessment store over the KV gateway
func NewAssessmentStore(kv KV) AssessmentStore {
	return &assessmentStore{kv: kv}
}

func assessmentKey(subjectID string, kind model.QuestionnaireKind, id string) string {
	return fmt.Sprintf("assessment:%s:%s:%s", subjectID, kind, id)
}

func (s *assessmentStore) Save(ctx context.Context, a *model.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	// History first: a reader who sees the record without the pointer can
	// still find it by scanning, the reverse would lose it.
	if err := s.kv.Set(ctx, assessmentKey(a.SubjectID, a.Kind, a.ID), string(data)); err != nil {
		return err
	}
	return s.kv.Set(ctx, assessmentKey(a.SubjectID, a.Kind, "latest"), string(data))
}

func (s *assessmentStore) Latest(ctx context.Context, subjectID string, kind model.QuestionnaireKind) (*model.Assessment, error) {
	raw, ok, err := s.kv.Get(ctx, assessmentKey(subjectID, kind, "latest"))
	if err != nil {
		return nil, err
	}
	if ok {
		var a model.Assessment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, err
		}
		return &a, nil
	}

	// Pointer missing: the history write may have landed first
	history, err := s.History(ctx, subjectID, kind)
	if err != nil {
		return nil, err
	}
	var latest *model.Assessment
	for _, a := range history {
		if latest == nil || a.CompletedAt.After(latest.CompletedAt) {
			latest = a
		}
	}
	return latest, nil
}

func (s *assessmentStore) History(ctx context.Context, subjectID string, kind model.QuestionnaireKind) ([]*model.Assessment, error) {
	values, err := s.kv.GetByPrefix(ctx, fmt.Sprintf("assessment:%s:%s:", subjectID, kind))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var history []*model.Assessment
	for _, raw := range values {
		var a model.Assessment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			continue
		}
		// The latest pointer duplicates a history entry under the same prefix
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		cp := a
		history = append(history, &cp)
	}
	return history, nil
}
