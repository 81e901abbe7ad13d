// Package apperrors defines the sentinel errors shared across the
// repository, service, and handler layers.
package apperrors

import "errors"

var (
	// repository errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// flow errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("rate limit exceeded")

	// ErrUpstream marks failures of external collaborators (image host).
	// Mail failures are logged and absorbed, never wrapped in this.
	ErrUpstream = errors.New("upstream failure")
)
