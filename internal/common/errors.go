// Package common defines shared constants and sentinel errors used across
// the gateway. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrUserInactive   = errors.New("user account is inactive")

	// Validation errors.
	ErrValidation   = errors.New("validation error")
	ErrFileTooLarge = errors.New("file too large")

	// Auth errors: the three distinct verify failures. The HTTP layer
	// collapses them into one uniform unauthorized response.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrInvalidTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired          = errors.New("token expired")

	// Upstream model service failures.
	ErrUpstreamUnavailable = errors.New("upstream model service unavailable")

	// Job lifecycle errors.
	ErrJobNotCancellable = errors.New("job is not cancellable")
)
