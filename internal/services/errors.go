package services

import "errors"

var (
	// ErrNotFound means a referenced order, client or product id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the input was rejected before any write happened.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidTransition means the requested status change is not allowed
	// from the order's current state. A concurrent transition surfaces here
	// too: the loser re-reads the updated status and fails the table check.
	ErrInvalidTransition = errors.New("invalid status transition")
)
