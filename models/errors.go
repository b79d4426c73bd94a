package models

import "errors"

// Error taxonomy shared by the services and mapped to HTTP status codes
// by the controllers. Wrap with fmt.Errorf("...: %w", Err...) and match
// with errors.Is.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("not authorized")
	ErrInvalidTransition = errors.New("invalid status transition")
)
