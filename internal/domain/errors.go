package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")
	ErrAuthRequired       = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("resource already exists")
)
