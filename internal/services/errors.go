package services

import "errors"

// Failure classes surfaced by the messaging core. Handlers map these to HTTP
// status codes; anything else bubbling out of a service is treated as a
// storage failure.
var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrPostNotFound       = errors.New("post not found")
	ErrInvalidRecipient   = errors.New("cannot message yourself")
	ErrNoRecipient        = errors.New("no recipient specified")
	ErrValidation         = errors.New("invalid input")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
