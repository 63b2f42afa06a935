package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or is not visible to the current user).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, negative duration, unknown currency).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when a request carries no usable identity.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")
