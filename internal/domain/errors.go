package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking. Business-rule violations are
// always returned as (wrapped) sentinels, never panics; only ErrUnavailable
// indicates an infrastructure failure the service cannot reason about.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")

	// Phase transition guard failures.
	ErrInvalidTransition   = errors.New("invalid phase transition")
	ErrPaymentRequired     = errors.New("payment required")
	ErrChecklistIncomplete = errors.New("pre-live checklist incomplete")
	ErrUnresolvedFeedback  = errors.New("unresolved feedback")

	// Change-request failures.
	ErrQuotaExceeded           = errors.New("monthly change quota exceeded")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// MsgRequired is the validation message for mandatory fields.
const MsgRequired = "is required"

// ValidationError provides programmatic access to field-level validation
// failures. Use errors.Is(err, ErrValidation) for simple checks, or
// errors.As(err, &verr) to access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransitionError reports a blocked phase transition together with the
// specific precondition that failed, so the caller can render an actionable
// message instead of a generic failure. Reason is one of the guard sentinels
// and is exposed through Unwrap for errors.Is checks.
type TransitionError struct {
	From    string
	To      string
	Reason  error
	Missing []string // checklist gate names, set when Reason is ErrChecklistIncomplete
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("transition %s -> %s blocked: %v", e.From, e.To, e.Reason)
	if len(e.Missing) > 0 {
		msg += " (missing: " + strings.Join(e.Missing, ", ") + ")"
	}
	return msg
}

func (e *TransitionError) Unwrap() error {
	return e.Reason
}
