package model

import "errors"

// Validation errors. These propagate to the caller as explicit failures.
var (
	ErrInvalidRange  = errors.New("invalid date range")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidRecord = errors.New("invalid record")
)

// Programming errors.
var (
	ErrUnknownRecordKind = errors.New("unknown record kind")
	ErrUnsupportedWrite  = errors.New("unsupported write for record kind")
	ErrNotFound          = errors.New("record not found")
)

// ErrCrossUser marks a record whose owner does not match the caller.
var ErrCrossUser = errors.New("cross-user data violation")

// Model call failures. The responder absorbs these into a fallback reply.
var (
	ErrModelTimeout   = errors.New("model timeout")
	ErrModelTransport = errors.New("model transport error")
	ErrEmptyResponse  = errors.New("model returned empty response")
)
