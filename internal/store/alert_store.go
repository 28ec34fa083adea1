package store

import (
	"context"
	"encoding/json"
	"fmt"

	"campuswell/internal/model"
)

// AlertStore persists alert records and their append-only audit trail. The
// record at alert:{key} is the current state; every transition additionally
// writes an audit entry that is never overwritten.
type AlertStore interface {
	Get(ctx context.Context, alertKey string) (*model.AlertRecord, error)
	Save(ctx context.Context, record *model.AlertRecord, audit model.AlertAuditEntry) error
	Audit(ctx context.Context, alertKey string) ([]model.AlertAuditEntry, error)
	ListBySubject(ctx context.Context, subjectID string) ([]*model.AlertRecord, error)
}

type alertStore struct {
	kv KV
}

// NewAlertStore creates an alert store over the KV gateway
func NewAlertStore(kv KV) AlertStore {
	return &alertStore{kv: kv}
}

func alertKey(key string) string {
	return "alert:" + key
}

func auditKey(key string, at int64) string {
	return fmt.Sprintf("alert_audit:%s:%020d", key, at)
}

func (s *alertStore) Get(ctx context.Context, key string) (*model.AlertRecord, error) {
	raw, ok, err := s.kv.Get(ctx, alertKey(key))
	if err != nil || !ok {
		return nil, err
	}
	var record model.AlertRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *alertStore) Save(ctx context.Context, record *model.AlertRecord, audit model.AlertAuditEntry) error {
	auditData, err := json.Marshal(audit)
	if err != nil {
		return err
	}
	// Audit first so a crash between the writes still leaves a trace of the
	// attempted transition.
	if err := s.kv.Set(ctx, auditKey(record.AlertKey, audit.At.UnixNano()), string(auditData)); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, alertKey(record.AlertKey), string(data))
}

func (s *alertStore) Audit(ctx context.Context, key string) ([]model.AlertAuditEntry, error) {
	values, err := s.kv.GetByPrefix(ctx, "alert_audit:"+key+":")
	if err != nil {
		return nil, err
	}
	entries := make([]model.AlertAuditEntry, 0, len(values))
	for _, raw := range values {
		var e model.AlertAuditEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *alertStore) ListBySubject(ctx context.Context, subjectID string) ([]*model.AlertRecord, error) {
	values, err := s.kv.GetByPrefix(ctx, "alert:"+subjectID+":")
	if err != nil {
		return nil, err
	}
	records := make([]*model.AlertRecord, 0, len(values))
	for _, raw := range values {
		var r model.AlertRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		cp := r
		records = append(records, &cp)
	}
	return records, nil
}
