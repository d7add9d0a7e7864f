/*
errors.go - Centralized error types for the HRM engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Domain packages wrap these with additional context where useful.

ERROR CATEGORIES:
  1. Validation errors - Bad input, rejected before any state changes
  2. Lookup errors     - Referenced records that do not exist
  3. State errors      - Persistence-boundary failures (corrupt documents)

USAGE:
  if errors.Is(err, hrm.ErrInvalidDateRange) {
      // user-facing validation message, nothing was mutated
  }

SEE ALSO:
  - state.go: Raises ErrCorruptState at the persistence boundary
  - api/handlers.go: Maps these onto HTTP status codes
*/
package hrm

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee id has no
	// roster record.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrPackageNotFound is returned when a referenced salary package id
	// has no template.
	ErrPackageNotFound = errors.New("salary package not found")

	// ErrPackageNotAssigned is returned when a payroll operation needs a
	// package but the employee has none. Tabular views degrade to
	// "Not Assigned" instead.
	ErrPackageNotAssigned = errors.New("no salary package assigned")

	// ErrInvalidDateRange is returned when a leave application's inclusive
	// day count is not positive (end before start, or unparseable dates).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrRequestDecided is returned when flipping an already-decided leave
	// request to a different terminal status. Re-applying the same status
	// is a no-op, not an error.
	ErrRequestDecided = errors.New("leave request already decided")

	// ErrLeaveRequestNotFound is returned for unknown leave request ids.
	ErrLeaveRequestNotFound = errors.New("leave request not found")

	// ErrInvalidCredentials is returned by login on a failed id/pin match.
	// Deliberately does not distinguish unknown id from wrong pin.
	ErrInvalidCredentials = errors.New("invalid id or pin")

	// ErrCorruptState is returned when a persisted document fails to decode.
	// The load fails closed: no partial state is applied.
	ErrCorruptState = errors.New("corrupt persisted state")

	// ErrMissingField is returned when a required field is empty.
	ErrMissingField = errors.New("missing required field")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// CorruptStateError identifies which document failed to decode.
type CorruptStateError struct {
	Key   string
	Cause error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt persisted state at key %q: %v", e.Key, e.Cause)
}

func (e *CorruptStateError) Unwrap() error { return ErrCorruptState }

// FieldError identifies which required field was missing.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrRequestDecided) ||
		errors.Is(err, ErrPackageNotAssigned) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMissingField)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, ErrLeaveRequestNotFound)
}
