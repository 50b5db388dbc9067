/*
errors.go - Centralized error types for the pay engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages return these (or wrap them with %w) so callers can
  classify failures with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Validation errors - invalid rates, inverted time ranges, breaks that
     do not fit the shift. Always carry a machine-checkable Reason.
  2. Lookup errors - missing records, templates, holidays.
  3. Session errors - operations that need a running session.

CONTRACT:
  A failed calculation never returns a partial result. Callers presenting
  the failure keep the user's raw input and zero only derived numbers.

SEE ALSO:
  - pay/calculator.go: Produces ValidationError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is the root of every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an ID already exists.
	ErrDuplicate = errors.New("duplicate id")

	// ErrNoActiveSession is returned by callers that need a running session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// VALIDATION REASONS
// =============================================================================

// Reason is the machine-checkable cause of a ValidationError.
type Reason string

const (
	ReasonTaxRateRange      Reason = "tax_rate_out_of_range"
	ReasonVacationRateRange Reason = "vacation_rate_out_of_range"
	ReasonNegativeBasePay   Reason = "negative_base_pay"
	ReasonNegativeRate      Reason = "negative_premium_rate"
	ReasonUnknownWorkplace  Reason = "unknown_workplace"
	ReasonEndBeforeStart    Reason = "end_before_start"
	ReasonInvalidClock      Reason = "invalid_clock_time"
	ReasonBreakInverted     Reason = "break_inverted"
	ReasonBreakOutsideShift Reason = "break_outside_shift"
	ReasonBreakExceedsShift Reason = "break_exceeds_shift"
	ReasonNegativeWorked    Reason = "negative_worked_time"
	ReasonInvalidSickDay    Reason = "invalid_sick_day"
	ReasonInvalidBreakTier  Reason = "invalid_break_tier"
	ReasonInvalidPeriod     Reason = "invalid_period"
	ReasonInvalidSchedule   Reason = "invalid_schedule"
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes why an input was rejected.
type ValidationError struct {
	Reason  Reason
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Reason, e.Message, e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid builds a ValidationError.
func Invalid(reason Reason, field, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing thing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// ReasonOf extracts the validation reason, or "" when err is not a validation error.
func ReasonOf(err error) Reason {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	return ""
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNoActiveSession)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrDuplicate) }
