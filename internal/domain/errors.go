package domain

import "errors"

// Error taxonomy surfaced by services. Handlers map these to HTTP statuses;
// anything not in this list is treated as an internal failure.
var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("resource already exists")

	// ErrNotFound is returned when no matching record exists.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned on a password mismatch. Distinct from
	// ErrUnauthorized so login failures never leak whether the account exists
	// beyond what lookup already revealed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is returned for missing, invalid, expired, or replayed
	// tokens.
	ErrUnauthorized = errors.New("unauthorized")
)
