package model

import "fmt"

// ValidationError reports user-correctable problems with a submission.
// The Field names the offending question or input so the client can point at it.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConfigError reports a malformed band table or rule set. It is fatal to the
// operation that hit it and never shown to end users.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string {
	return "risk configuration invalid: " + e.Detail
}

// DeliveryError wraps a channel failure so the dispatcher can record the
// attempt as failed without losing the cause.
type DeliveryError struct {
	Channel string
	Cause   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery via %s failed: %v", e.Channel, e.Cause)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}
