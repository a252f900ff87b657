package domain

import (
	"fmt"
	"time"
)

// NotFoundError indicates a referenced entity does not resolve. It is always
// surfaced to the caller verbatim and never retried.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidTransitionError is returned when the rental state machine rejects a
// requested status change. Both states are named so the caller can report them.
type InvalidTransitionError struct {
	From RentalStatus
	To   RentalStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// UnavailableError carries the conflicting slots so the caller can offer
// alternative windows.
type UnavailableError struct {
	BikeID    int64
	Conflicts []UnavailabilitySlot
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("bike %d is not available for the requested period (%d conflicts)", e.BikeID, len(e.Conflicts))
}

// InvalidTemporalOrderingError is a usage error (dates in the wrong order,
// custom duration without a day count), distinct from availability conflicts.
type InvalidTemporalOrderingError struct {
	Reason string
}

func (e *InvalidTemporalOrderingError) Error() string {
	return e.Reason
}

// ConfigurationViolationError is returned when a request exceeds a configured
// limit. The limit value is included so the caller can show it.
type ConfigurationViolationError struct {
	Setting string
	Limit   string
	Reason  string
}

func (e *ConfigurationViolationError) Error() string {
	return fmt.Sprintf("%s (setting %s, limit %s)", e.Reason, e.Setting, e.Limit)
}

// BikeNotInRentalError is returned by the check-in/check-out recorders when a
// submitted bike has no matching rental item.
type BikeNotInRentalError struct {
	RentalID int64
	BikeID   int64
}

func (e *BikeNotInRentalError) Error() string {
	return fmt.Sprintf("bike %d is not part of rental %d", e.BikeID, e.RentalID)
}

// IncompleteCheckOutError is returned when a rental completion is requested
// while some bikes still have no recorded return condition. The missing bikes
// are listed so the operator can finish the assessment.
type IncompleteCheckOutError struct {
	RentalID       int64
	MissingBikeIDs []int64
}

func (e *IncompleteCheckOutError) Error() string {
	return fmt.Sprintf("rental %d cannot be completed: %d bike(s) have no recorded return condition", e.RentalID, len(e.MissingBikeIDs))
}

// ErrUseRegularCheckout is wrapped into the temporal-ordering error returned
// when an early return is requested for a rental that is not actually being
// returned early.
func ErrUseRegularCheckout(actual, expected time.Time) error {
	return &InvalidTemporalOrderingError{
		Reason: fmt.Sprintf(
			"return date %s is not before the expected return date %s; use regular checkout",
			actual.Format(time.RFC3339), expected.Format(time.RFC3339)),
	}
}
