package model

import (
	"fmt"
	"time"
)

// Event names for the mentor live feed
const (
	EventAlertRaised = "alert_raised"
	EventAlertFailed = "alert_failed"
	EventRiskChanged = "risk_changed"
)

// ChannelType is a delivery channel for alerts
type ChannelType string

const (
	ChannelSMS          ChannelType = "sms"
	ChannelEmail        ChannelType = "email"
	ChannelMentorAssign ChannelType = "mentor-assignment"
)

// IsValid reports whether the channel is supported
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelEmail, ChannelMentorAssign:
		return true
	default:
		return false
	}
}

// AlertStatus is the delivery state of an alert record.
// Transitions: pending -> sent -> delivered, or pending -> failed.
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertSent      AlertStatus = "sent"
	AlertDelivered AlertStatus = "delivered"
	AlertFailed    AlertStatus = "failed"
)

// AlertRecord tracks one logical alert per alert key. Its identity enforces
// at-most-one in-flight alert per (subject, type); re-triggering the same
// condition while a non-failed record exists is a no-op for the caller.
type AlertRecord struct {
	AlertKey         string      `json:"alertKey"`
	SubjectID        string      `json:"subjectId"`
	AlertType        string      `json:"alertType"`
	Channel          ChannelType `json:"channel"`
	Status           AlertStatus `json:"status"`
	RetryCount       int         `json:"retryCount"`
	LastError        string      `json:"lastError,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	LastTransitionAt time.Time   `json:"lastTransitionAt"`
}

// AlertAuditEntry is one append-only log line for a record transition
type AlertAuditEntry struct {
	AlertKey string      `json:"alertKey"`
	From     AlertStatus `json:"from"`
	To       AlertStatus `json:"to"`
	Note     string      `json:"note,omitempty"`
	At       time.Time   `json:"at"`
}

// AlertKeyFor derives the deterministic alert identity. An optional day bucket
// lets the same condition alert again on a later day without a manual retry.
func AlertKeyFor(subjectID, alertType string, day string) string {
	if day == "" {
		return fmt.Sprintf("%s:%s", subjectID, alertType)
	}
	return fmt.Sprintf("%s:%s:%s", subjectID, alertType, day)
}

// AlertDecision is the outcome of evaluating a tier change
type AlertDecision struct {
	Raise     bool   `json:"raise"`
	AlertType string `json:"alertType,omitempty"`
}

// Alert types raised on tier escalation
const (
	AlertTypeRiskHigh     = "risk_high"
	AlertTypeRiskCritical = "risk_critical"
)
