package entities

import "errors"

var (
	// ErrInvalidState is returned when an operation would drive organ
	// biomass into an impossible state, which points at an upstream
	// arbitration bug.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnsupportedOperation is returned when a derived value is written.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
