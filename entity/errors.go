package entity

import "errors"

// Expected outcomes of contention and validation. Callers match them with errors.Is;
// anything else returned from the core is an infrastructure failure.
var (
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("show is fully booked")
	ErrAlreadyBooked    = errors.New("ticket already booked for this show")
	ErrSignatureInvalid = errors.New("invalid payment signature")
	ErrConflict         = errors.New("conflicting state")
	ErrTransient        = errors.New("system busy, try again")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrTooManyAttempts  = errors.New("too many attempts")
)
