package application

import "errors"

// ValidationError is a client-fixable input problem. Nothing was written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// AuthenticationError means the caller could not be identified.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return e.Reason }

// InternalError wraps a storage or unexpected fault. The cause is logged, never shown to clients.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

var (
	ErrPasswordTooShort   = &ValidationError{Reason: "password too short"}
	ErrUsernameMissing    = &ValidationError{Reason: "username missing"}
	ErrUsernameTaken      = &ValidationError{Reason: "username not unique"}
	ErrMissingBlogField   = &ValidationError{Reason: "missing required field"}
	ErrMalformedID        = &ValidationError{Reason: "malformed id"}
	ErrUnknownUser        = &AuthenticationError{Reason: "token missing or invalid"}
	ErrInvalidCredentials = &AuthenticationError{Reason: "invalid username or password"}
	ErrBlogNotFound       = errors.New("blog not found")
)
