package payout

import (
	"errors"
	"fmt"
)

// ErrMissingContact is returned when onboarding is started for a team without
// a contact email.
var ErrMissingContact = errors.New("payout: team has no contact email")

// ErrNotProvisioned is returned when a refresh is requested before any
// external account was created.
var ErrNotProvisioned = errors.New("payout: connected account not provisioned")

// ProcessorError carries the payment processor's own error code and message.
// Any processor API failure is surfaced to the caller as one of these; local
// state is never mutated on failure.
type ProcessorError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *ProcessorError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("processor error %s (status %d): %s", e.Code, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("processor error (status %d): %s", e.HTTPStatus, e.Message)
}
