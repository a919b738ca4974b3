package security

import "errors"

var (
	// ErrAuthentication is returned when a lockdown-release token is
	// empty or fails verification.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidScope is returned when a scope fails validation.
	ErrInvalidScope = errors.New("invalid permission scope")
)
