package domain

import "errors"

// Sentinel errors shared by services and adapters.
// Wrap them with %w; the HTTP layer maps each one to a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrTooLarge     = errors.New("payload too large")
	ErrUnavailable  = errors.New("service unavailable")
	ErrUpstream     = errors.New("upstream service error")
)
