package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuswell/internal/config"
	"campuswell/internal/model"
	"campuswell/internal/repository"
	"campuswell/internal/store"
)

type stubChannel struct {
	calls    int
	failures int
}

func (c *stubChannel) Deliver(ctx context.Context, record *model.AlertRecord) error {
	c.calls++
	if c.failures > 0 {
		c.failures--
		return errors.New("gateway unreachable")
	}
	return nil
}

type stubStudentRepo struct {
	student        *model.Student
	assignedMentor string
}

func (r *stubStudentRepo) Get(ctx context.Context, subjectID string) (*model.Student, error) {
	return r.student, nil
}

func (r *stubStudentRepo) List(ctx context.Context) ([]*model.Student, error) {
	if r.student == nil {
		return nil, nil
	}
	return []*model.Student{r.student}, nil
}

func (r *stubStudentRepo) ListByMentor(ctx context.Context, mentorID string) ([]*model.Student, error) {
	return nil, nil
}

func (r *stubStudentRepo) Upsert(ctx context.Context, student *model.Student) error {
	r.student = student
	return nil
}

func (r *stubStudentRepo) UpdateAcademic(ctx context.Context, subjectID string, update repository.AcademicUpdate) error {
	return nil
}

func (r *stubStudentRepo) AssignMentor(ctx context.Context, subjectID, mentorID string) error {
	r.assignedMentor = mentorID
	return nil
}

type recordedMessage struct {
	msgType  string
	mentorID string
}

type stubBroadcaster struct {
	messages []recordedMessage
}

func (b *stubBroadcaster) BroadcastToMentors(msgType string, payload interface{}) {
	b.messages = append(b.messages, recordedMessage{msgType: msgType})
}

func (b *stubBroadcaster) BroadcastToMentor(mentorID string, msgType string, payload interface{}) {
	b.messages = append(b.messages, recordedMessage{msgType: msgType, mentorID: mentorID})
}

func newAlertFixture(channels map[model.ChannelType]Channel) (*AlertService, store.AlertStore) {
	alerts := store.NewAlertStore(store.NewMemoryKV())
	return NewAlertService(config.DefaultRiskConfig(), alerts, channels), alerts
}

func profileAt(tier model.Tier) *model.RiskProfile {
	return &model.RiskProfile{SubjectID: "s1", Tier: tier}
}

func TestEvaluateTransitions(t *testing.T) {
	svc, _ := newAlertFixture(nil)

	cases := []struct {
		name     string
		previous *model.RiskProfile
		current  *model.RiskProfile
		raise    bool
		typ      string
	}{
		{"nil current", profileAt(model.TierHigh), nil, false, ""},
		{"first classification low", nil, profileAt(model.TierLow), false, ""},
		{"first classification moderate", nil, profileAt(model.TierModerate), false, ""},
		{"first classification high", nil, profileAt(model.TierHigh), true, "risk_high"},
		{"first classification critical", nil, profileAt(model.TierCritical), true, "risk_critical"},
		{"escalation low to moderate", profileAt(model.TierLow), profileAt(model.TierModerate), true, "risk_moderate"},
		{"escalation moderate to high", profileAt(model.TierModerate), profileAt(model.TierHigh), true, "risk_high"},
		{"escalation high to critical", profileAt(model.TierHigh), profileAt(model.TierCritical), true, "risk_critical"},
		{"unchanged high", profileAt(model.TierHigh), profileAt(model.TierHigh), false, ""},
		{"de-escalation is silent", profileAt(model.TierCritical), profileAt(model.TierModerate), false, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := svc.Evaluate(tc.previous, tc.current)
			assert.Equal(t, tc.raise, decision.Raise)
			assert.Equal(t, tc.typ, decision.AlertType)
		})
	}
}

func TestDispatchDeliversAndAudits(t *testing.T) {
	ctx := context.Background()
	ch := &stubChannel{}
	svc, alerts := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: ch})

	record, err := svc.Dispatch(ctx, model.AlertTypeRiskCritical, "s1", model.ChannelSMS)
	require.NoError(t, err)

	assert.Equal(t, "s1:risk_critical", record.AlertKey)
	assert.Equal(t, model.AlertSent, record.Status)
	assert.Equal(t, 1, ch.calls)

	trail, err := alerts.Audit(ctx, record.AlertKey)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, model.AlertPending, trail[0].To)
	assert.Equal(t, model.AlertPending, trail[1].From)
	assert.Equal(t, model.AlertSent, trail[1].To)
}

func TestDispatchSuppressesDuplicates(t *testing.T) {
	ctx := context.Background()
	ch := &stubChannel{}
	svc, _ := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: ch})

	first, err := svc.Dispatch(ctx, model.AlertTypeRiskHigh, "s1", model.ChannelSMS)
	require.NoError(t, err)

	second, err := svc.Dispatch(ctx, model.AlertTypeRiskHigh, "s1", model.ChannelSMS)
	assert.ErrorIs(t, err, ErrDuplicateAlert)
	assert.Equal(t, first.AlertKey, second.AlertKey)
	assert.Equal(t, 1, ch.calls, "duplicate must not re-deliver")
}

func TestDispatchFailedRecordStaysSuppressed(t *testing.T) {
	ctx := context.Background()
	ch := &stubChannel{failures: 1}
	svc, _ := newAlertFixture(map[model.ChannelType]Channel{model.ChannelEmail: ch})

	record, err := svc.Dispatch(ctx, model.AlertTypeRiskHigh, "s1", model.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, model.AlertFailed, record.Status)
	assert.Contains(t, record.LastError, "gateway unreachable")

	// Automatic dispatch never resurrects a failed record
	_, err = svc.Dispatch(ctx, model.AlertTypeRiskHigh, "s1", model.ChannelEmail)
	assert.ErrorIs(t, err, ErrDuplicateAlert)
	assert.Equal(t, 1, ch.calls)
}

func TestDispatchRejectsUnknownChannel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAlertFixture(map[model.ChannelType]Channel{})

	_, err := svc.Dispatch(ctx, model.AlertTypeRiskHigh, "s1", "carrier-pigeon")
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Dispatch(ctx, model.AlertTypeRiskHigh, "s1", model.ChannelEmail)
	var cerr *model.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestRetryIsExplicitAndBounded(t *testing.T) {
	ctx := context.Background()
	ch := &stubChannel{failures: 1}
	svc, alerts := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: ch})

	record, err := svc.Dispatch(ctx, model.AlertTypeRiskCritical, "s1", model.ChannelSMS)
	require.NoError(t, err)
	require.Equal(t, model.AlertFailed, record.Status)

	retried, err := svc.Retry(ctx, record.AlertKey)
	require.NoError(t, err)
	assert.Equal(t, model.AlertSent, retried.Status)
	assert.Equal(t, 1, retried.RetryCount)
	assert.Empty(t, retried.LastError)
	assert.Equal(t, 2, ch.calls)

	// Now sent, so no longer retryable
	_, err = svc.Retry(ctx, record.AlertKey)
	assert.ErrorIs(t, err, ErrNotRetryable)

	trail, err := alerts.Audit(ctx, record.AlertKey)
	require.NoError(t, err)
	assert.Len(t, trail, 4) // pending, failed, operator retry, sent
}

func TestRetryExhaustedAfterSecondFailure(t *testing.T) {
	ctx := context.Background()
	ch := &stubChannel{failures: 2}
	svc, _ := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: ch})

	record, err := svc.Dispatch(ctx, model.AlertTypeRiskCritical, "s1", model.ChannelSMS)
	require.NoError(t, err)

	retried, err := svc.Retry(ctx, record.AlertKey)
	require.NoError(t, err)
	assert.Equal(t, model.AlertFailed, retried.Status)

	_, err = svc.Retry(ctx, record.AlertKey)
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, 2, ch.calls)
}

func TestRetryUnknownKey(t *testing.T) {
	svc, _ := newAlertFixture(nil)

	_, err := svc.Retry(context.Background(), "s1:risk_high")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestConfirmDelivery(t *testing.T) {
	ctx := context.Background()
	ch := &stubChannel{}
	svc, _ := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: ch})

	record, err := svc.Dispatch(ctx, model.AlertTypeRiskCritical, "s1", model.ChannelSMS)
	require.NoError(t, err)
	require.Equal(t, model.AlertSent, record.Status)

	confirmed, err := svc.ConfirmDelivery(ctx, record.AlertKey)
	require.NoError(t, err)
	assert.Equal(t, model.AlertDelivered, confirmed.Status)

	// A second receipt finds a delivered record, which is not confirmable
	_, err = svc.ConfirmDelivery(ctx, record.AlertKey)
	assert.ErrorIs(t, err, ErrNotConfirmable)

	_, err = svc.ConfirmDelivery(ctx, "s9:risk_high")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestRaiseForTransitionPicksChannelByTier(t *testing.T) {
	ctx := context.Background()
	sms := &stubChannel{}
	email := &stubChannel{}
	svc, _ := newAlertFixture(map[model.ChannelType]Channel{
		model.ChannelSMS:   sms,
		model.ChannelEmail: email,
	})

	record, err := svc.RaiseForTransition(ctx, nil, profileAt(model.TierCritical))
	require.NoError(t, err)
	assert.Equal(t, model.ChannelSMS, record.Channel)
	assert.Equal(t, 1, sms.calls)

	record, err = svc.RaiseForTransition(ctx, nil, &model.RiskProfile{SubjectID: "s2", Tier: model.TierHigh})
	require.NoError(t, err)
	assert.Equal(t, model.ChannelEmail, record.Channel)
	assert.Equal(t, 1, email.calls)

	// No decision, no record
	record, err = svc.RaiseForTransition(ctx, nil, profileAt(model.TierLow))
	require.NoError(t, err)
	assert.Nil(t, record)

	// A repeat transition is swallowed as a duplicate, not surfaced as an error
	record, err = svc.RaiseForTransition(ctx, nil, profileAt(model.TierCritical))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 1, sms.calls)
}

func TestDispatchBroadcastsToMentors(t *testing.T) {
	ctx := context.Background()
	b := &stubBroadcaster{}

	okSvc, _ := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: &stubChannel{}})
	okSvc.SetBroadcaster(b)
	_, err := okSvc.Dispatch(ctx, model.AlertTypeRiskCritical, "s1", model.ChannelSMS)
	require.NoError(t, err)
	require.Len(t, b.messages, 1)
	assert.Equal(t, "alert_raised", b.messages[0].msgType)

	failSvc, _ := newAlertFixture(map[model.ChannelType]Channel{model.ChannelSMS: &stubChannel{failures: 1}})
	failSvc.SetBroadcaster(b)
	_, err = failSvc.Dispatch(ctx, model.AlertTypeRiskCritical, "s2", model.ChannelSMS)
	require.NoError(t, err)
	require.Len(t, b.messages, 2)
	assert.Equal(t, "alert_failed", b.messages[1].msgType)
}

func TestDayBucketSeparatesAlertKeys(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultRiskConfig()
	cfg.AlertDayBucket = true
	alerts := store.NewAlertStore(store.NewMemoryKV())
	svc := NewAlertService(cfg, alerts, map[model.ChannelType]Channel{model.ChannelSMS: &stubChannel{}})

	record, err := svc.Dispatch(ctx, model.AlertTypeRiskCritical, "s1", model.ChannelSMS)
	require.NoError(t, err)
	assert.Regexp(t, `^s1:risk_critical:\d{4}-\d{2}-\d{2}$`, record.AlertKey)
}

func TestMentorAssignChannel(t *testing.T) {
	ctx := context.Background()
	record := &model.AlertRecord{AlertKey: "s1:risk_high", SubjectID: "s1", AlertType: model.AlertTypeRiskHigh}

	// Unassigned student picks up the fallback mentor
	repo := &stubStudentRepo{student: &model.Student{SubjectID: "s1"}}
	ch := NewMentorAssignChannel(repo, "mentor-7")
	require.NoError(t, ch.Deliver(ctx, record))
	assert.Equal(t, "mentor-7", repo.assignedMentor)

	// Existing assignment is left alone
	repo = &stubStudentRepo{student: &model.Student{SubjectID: "s1", MentorID: "mentor-1"}}
	ch = NewMentorAssignChannel(repo, "mentor-7")
	require.NoError(t, ch.Deliver(ctx, record))
	assert.Empty(t, repo.assignedMentor)

	// Off-roster subject is a delivery failure
	ch = NewMentorAssignChannel(&stubStudentRepo{}, "mentor-7")
	err := ch.Deliver(ctx, record)
	var derr *model.DeliveryError
	assert.ErrorAs(t, err, &derr)
}
