package domain

import "errors"

// Common errors
var (
	ErrNotFound   = errors.New("record not found")
	ErrInvalidID  = errors.New("invalid id")
	ErrInvalidSet = errors.New("invalid set")

	// ErrInvalidManualValue is returned by the caller layer when a manual 1RM is not a finite positive number
	ErrInvalidManualValue = errors.New("manual 1RM must be a finite number greater than zero")

	// ErrCorruptIndex marks a persisted historical 1RM document that could not be decoded
	ErrCorruptIndex = errors.New("historical 1RM document is corrupt")
)
