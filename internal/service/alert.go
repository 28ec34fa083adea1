package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campuswell/internal/config"
	"campuswell/internal/model"
	"campuswell/internal/store"
)

var (
	// ErrDuplicateAlert means a non-terminal-failed record already exists for
	// the alert key. Expected under concurrency; callers treat it as a no-op.
	ErrDuplicateAlert = errors.New("alert already in flight for this key")
	ErrAlertNotFound  = errors.New("no alert record for this key")
	ErrNotRetryable   = errors.New("alert is not in a failed state")
	ErrRetryExhausted = errors.New("failed alert was already retried once")
	ErrNotConfirmable = errors.New("delivery receipt for an alert that was never sent")
)

// AlertService manages idempotent, auditable alert dispatch. One logical
// alert exists per alert key; state moves pending -> sent -> delivered, or
// pending -> failed, with every transition written to an append-only audit
// trail before the record itself.
type AlertService struct {
	cfg         *config.RiskConfig
	alerts      store.AlertStore
	channels    map[model.ChannelType]Channel
	broadcaster Broadcaster
	now         func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(cfg *config.RiskConfig, alerts store.AlertStore, channels map[model.ChannelType]Channel) *AlertService {
	return &AlertService{
		cfg:      cfg,
		alerts:   alerts,
		channels: channels,
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AlertService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Evaluate decides whether a tier transition warrants an alert. Alerts are
// raised on escalation or on a first-ever classification at high/critical.
// De-escalation is always silent to avoid alert fatigue.
func (s *AlertService) Evaluate(previous, current *model.RiskProfile) model.AlertDecision {
	if current == nil {
		return model.AlertDecision{}
	}
	if previous == nil {
		if current.Tier.Weight() >= model.TierHigh.Weight() {
			return model.AlertDecision{Raise: true, AlertType: "risk_" + string(current.Tier)}
		}
		return model.AlertDecision{}
	}
	if current.Tier.Weight() > previous.Tier.Weight() {
		return model.AlertDecision{Raise: true, AlertType: "risk_" + string(current.Tier)}
	}
	return model.AlertDecision{}
}

// Dispatch creates and delivers one alert. Returns ErrDuplicateAlert with the
// existing record when the key already has one that has not terminally
// failed; a failed record is only ever re-attempted through Retry.
func (s *AlertService) Dispatch(ctx context.Context, alertType, subjectID string, channel model.ChannelType) (*model.AlertRecord, error) {
	if !channel.IsValid() {
		return nil, model.NewValidationError("channel", fmt.Sprintf("unsupported channel %q", channel))
	}
	ch, ok := s.channels[channel]
	if !ok {
		return nil, &model.ConfigError{Detail: fmt.Sprintf("no delivery channel wired for %q", channel)}
	}

	key := model.AlertKeyFor(subjectID, alertType, s.dayBucket())

	// Read-decide-write: two racing dispatchers may both pass this check and
	// both deliver. The last write establishes the record, both attempts are
	// audited, and a bounded duplicate send is acceptable in this domain.
	existing, err := s.alerts.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing alert: %w", err)
	}
	if existing != nil {
		log.Printf("Suppressed duplicate alert %s (status %s)", key, existing.Status)
		return existing, ErrDuplicateAlert
	}

	now := s.now()
	record := &model.AlertRecord{
		AlertKey:         key,
		SubjectID:        subjectID,
		AlertType:        alertType,
		Channel:          channel,
		Status:           model.AlertPending,
		CreatedAt:        now,
		LastTransitionAt: now,
	}
	if err := s.alerts.Save(ctx, record, model.AlertAuditEntry{
		AlertKey: key,
		To:       model.AlertPending,
		Note:     "dispatch requested",
		At:       now,
	}); err != nil {
		return nil, fmt.Errorf("failed to create alert record: %w", err)
	}

	return s.attempt(ctx, record, ch)
}

// ConfirmDelivery applies an asynchronous delivery receipt, moving a sent
// record to delivered. Receipts are not guaranteed to ever arrive.
func (s *AlertService) ConfirmDelivery(ctx context.Context, alertKey string) (*model.AlertRecord, error) {
	record, err := s.alerts.Get(ctx, alertKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrAlertNotFound
	}
	if record.Status != model.AlertSent {
		return nil, ErrNotConfirmable
	}
	if err := s.transition(ctx, record, model.AlertDelivered, "delivery receipt"); err != nil {
		return nil, err
	}
	return record, nil
}

// Retry re-attempts a failed alert. It is an explicit operator action,
// permitted exactly once per failed record, never automatic.
func (s *AlertService) Retry(ctx context.Context, alertKey string) (*model.AlertRecord, error) {
	record, err := s.alerts.Get(ctx, alertKey)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrAlertNotFound
	}
	if record.Status != model.AlertFailed {
		return nil, ErrNotRetryable
	}
	if record.RetryCount >= 1 {
		return nil, ErrRetryExhausted
	}
	ch, ok := s.channels[record.Channel]
	if !ok {
		return nil, &model.ConfigError{Detail: fmt.Sprintf("no delivery channel wired for %q", record.Channel)}
	}

	record.RetryCount++
	record.LastError = ""
	if err := s.transition(ctx, record, model.AlertPending, "operator retry"); err != nil {
		return nil, err
	}
	return s.attempt(ctx, record, ch)
}

// RaiseForTransition evaluates a tier change and dispatches when warranted.
// Critical alerts go out by SMS, everything else by email. A duplicate is
// logged and swallowed: the caller's submission path must never fail on it.
func (s *AlertService) RaiseForTransition(ctx context.Context, previous, current *model.RiskProfile) (*model.AlertRecord, error) {
	decision := s.Evaluate(previous, current)
	if !decision.Raise {
		return nil, nil
	}

	channel := model.ChannelEmail
	if current.Tier == model.TierCritical {
		channel = model.ChannelSMS
	}

	record, err := s.Dispatch(ctx, decision.AlertType, current.SubjectID, channel)
	if errors.Is(err, ErrDuplicateAlert) {
		return record, nil
	}
	return record, err
}

func (s *AlertService) attempt(ctx context.Context, record *model.AlertRecord, ch Channel) (*model.AlertRecord, error) {
	timeout := time.Duration(s.cfg.DeliveryTimeoutMS) * time.Millisecond
	deliveryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ch.Deliver(deliveryCtx, record); err != nil {
		record.LastError = err.Error()
		log.Printf("Alert %s delivery failed: %v", record.AlertKey, err)
		if terr := s.transition(ctx, record, model.AlertFailed, "delivery attempt failed"); terr != nil {
			return nil, terr
		}
		s.broadcast(model.EventAlertFailed, record)
		return record, nil
	}

	if err := s.transition(ctx, record, model.AlertSent, "delivery accepted by channel"); err != nil {
		return nil, err
	}
	s.broadcast(model.EventAlertRaised, record)
	return record, nil
}

func (s *AlertService) transition(ctx context.Context, record *model.AlertRecord, to model.AlertStatus, note string) error {
	from := record.Status
	now := s.now()
	record.Status = to
	record.LastTransitionAt = now
	if err := s.alerts.Save(ctx, record, model.AlertAuditEntry{
		AlertKey: record.AlertKey,
		From:     from,
		To:       to,
		Note:     note,
		At:       now,
	}); err != nil {
		return fmt.Errorf("failed to persist alert transition %s -> %s: %w", from, to, err)
	}
	return nil
}

func (s *AlertService) broadcast(msgType string, record *model.AlertRecord) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToMentors(msgType, record)
	}
}

func (s *AlertService) dayBucket() string {
	if !s.cfg.AlertDayBucket {
		return ""
	}
	return s.now().UTC().Format("2006-01-02")
}
