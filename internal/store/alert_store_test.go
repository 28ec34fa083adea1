package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuswell/internal/model"
)

func TestAlertSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewAlertStore(NewMemoryKV())

	now := time.Now()
	record := &model.AlertRecord{
		AlertKey:         "s1:risk_high",
		SubjectID:        "s1",
		AlertType:        model.AlertTypeRiskHigh,
		Channel:          model.ChannelEmail,
		Status:           model.AlertPending,
		CreatedAt:        now,
		LastTransitionAt: now,
	}
	require.NoError(t, s.Save(ctx, record, model.AlertAuditEntry{
		AlertKey: record.AlertKey, To: model.AlertPending, Note: "dispatch requested", At: now,
	}))

	got, err := s.Get(ctx, "s1:risk_high")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.AlertPending, got.Status)
	assert.Equal(t, "s1", got.SubjectID)

	missing, err := s.Get(ctx, "s2:risk_high")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAlertAuditTrailIsChronological(t *testing.T) {
	ctx := context.Background()
	s := NewAlertStore(NewMemoryKV())

	record := &model.AlertRecord{AlertKey: "s1:risk_critical", SubjectID: "s1", Status: model.AlertPending}
	base := time.Now()

	transitions := []struct {
		from, to model.AlertStatus
		note     string
	}{
		{"", model.AlertPending, "dispatch requested"},
		{model.AlertPending, model.AlertSent, "delivery accepted by channel"},
		{model.AlertSent, model.AlertDelivered, "delivery receipt"},
	}
	for i, tr := range transitions {
		record.Status = tr.to
		require.NoError(t, s.Save(ctx, record, model.AlertAuditEntry{
			AlertKey: record.AlertKey,
			From:     tr.from,
			To:       tr.to,
			Note:     tr.note,
			At:       base.Add(time.Duration(i) * time.Second),
		}))
	}

	trail, err := s.Audit(ctx, "s1:risk_critical")
	require.NoError(t, err)
	require.Len(t, trail, 3)
	for i, tr := range transitions {
		assert.Equal(t, tr.to, trail[i].To)
		assert.Equal(t, tr.note, trail[i].Note)
	}
}

func TestAlertAuditEntriesNeverOverwritten(t *testing.T) {
	ctx := context.Background()
	s := NewAlertStore(NewMemoryKV())

	record := &model.AlertRecord{AlertKey: "s1:risk_high", SubjectID: "s1", Status: model.AlertPending}
	base := time.Now()
	require.NoError(t, s.Save(ctx, record, model.AlertAuditEntry{AlertKey: record.AlertKey, To: model.AlertPending, At: base}))

	record.Status = model.AlertFailed
	require.NoError(t, s.Save(ctx, record, model.AlertAuditEntry{
		AlertKey: record.AlertKey, From: model.AlertPending, To: model.AlertFailed, At: base.Add(time.Millisecond),
	}))

	// The record reflects only the last state; the trail keeps both writes
	got, err := s.Get(ctx, "s1:risk_high")
	require.NoError(t, err)
	assert.Equal(t, model.AlertFailed, got.Status)

	trail, err := s.Audit(ctx, "s1:risk_high")
	require.NoError(t, err)
	assert.Len(t, trail, 2)
}

func TestAlertListBySubject(t *testing.T) {
	ctx := context.Background()
	s := NewAlertStore(NewMemoryKV())

	now := time.Now()
	for _, key := range []string{"s1:risk_high", "s1:risk_critical", "s2:risk_high"} {
		record := &model.AlertRecord{AlertKey: key, Status: model.AlertSent}
		require.NoError(t, s.Save(ctx, record, model.AlertAuditEntry{AlertKey: key, To: model.AlertSent, At: now}))
		now = now.Add(time.Millisecond)
	}

	records, err := s.ListBySubject(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	keys := []string{records[0].AlertKey, records[1].AlertKey}
	assert.ElementsMatch(t, []string{"s1:risk_high", "s1:risk_critical"}, keys)
}
