package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication errors
	ErrMissingToken       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrIdentityMismatch   = errors.New("token identity does not match request identity")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Limiter store failure that is not a plain "limit exceeded" rejection
	ErrStoreUnavailable = errors.New("rate limiter store unavailable")
)

// RateLimitedError signals that a login attempt was rejected by the throttle.
// RetryAfter is the number of seconds the caller must wait, never below 1.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}

// AsRateLimited extracts a RateLimitedError from an error chain
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
