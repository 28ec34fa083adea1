package store

import (
	"context"
	"encoding/json"

	"campuswell/internal/model"
)

// RiskStore persists the derived risk profile per subject
type RiskStore interface {
	Save(ctx context.Context, profile *model.RiskProfile) error
	Get(ctx context.Context, subjectID string) (*model.RiskProfile, error)
	List(ctx context.Context) ([]*model.RiskProfile, error)
}

type riskStore struct {
	kv KV
}

// NewRiskStore creates a risk profile store over the KV gateway
func NewRiskStore(kv KV) RiskStore {
	return &riskStore{kv: kv}
}

func riskKey(subjectID string) string {
	return "risk_profile:" + subjectID
}

func (s *riskStore) Save(ctx context.Context, profile *model.RiskProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, riskKey(profile.SubjectID), string(data))
}

func (s *riskStore) Get(ctx context.Context, subjectID string) (*model.RiskProfile, error) {
	raw, ok, err := s.kv.Get(ctx, riskKey(subjectID))
	if err != nil || !ok {
		return nil, err
	}
	var profile model.RiskProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *riskStore) List(ctx context.Context) ([]*model.RiskProfile, error) {
	values, err := s.kv.GetByPrefix(ctx, "risk_profile:")
	if err != nil {
		return nil, err
	}
	profiles := make([]*model.RiskProfile, 0, len(values))
	for _, raw := range values {
		var p model.RiskProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		cp := p
		profiles = append(profiles, &cp)
	}
	return profiles, nil
}
