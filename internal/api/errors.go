package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the backend rejects the auth token.
// Callers force a local logout; local correctness over remote outcome.
var ErrSessionExpired = errors.New("session expired")

// ValidationError is a business-level rejection (coupon invalid, address
// unserviceable). State at the call site stays unchanged; the message is
// shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NetworkError is a transport-level failure: unreachable backend, non-2xx
// without a usable envelope, or a garbled payload. Screens keep their
// last-known-good state and offer a retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a business rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
