package domain

import "errors"

// Sentinel errors returned by store adapters. Usecases translate them into
// apperror values before they reach the transport layer.
var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("duplicate document")
	ErrUnavailable = errors.New("store unavailable")
)
