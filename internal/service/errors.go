package service

import "errors"

// Sentinel errors surfaced to the adapters. The CLI maps them to exit
// codes (1 for not-found, 2 for validation / confirmation) and the HTTP
// layer to status codes.
var (
	ErrNotFound        = errors.New("receipt not found")
	ErrInvalid         = errors.New("validation failed")
	ErrConfirmRequired = errors.New("confirmation required")
)
