package services

import (
	"errors"
	"fmt"

	"boutique/internal/repositories"
)

var (
	// ErrValidation marks input the caller must fix.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is the repositories' not-found error, re-exported for handlers.
	ErrNotFound = repositories.ErrNotFound
	// ErrPaymentNotConfirmed is returned when a checkout session is not paid.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	// ErrReconciliationInFlight is returned while another request turns the
	// same checkout session into an order.
	ErrReconciliationInFlight = errors.New("checkout session is already being processed")
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("already exists")
	// ErrUpstreamUnavailable is returned when the CMS cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	// ErrPaymentsDisabled is returned when no payment processor is configured.
	ErrPaymentsDisabled = errors.New("online payments are not configured")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
