package types

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound       = errors.New("requested item not found")
	ErrBadRequest     = errors.New("bad request")
	ErrUnsupported    = errors.New("unsupported provider")
	ErrNotInitialized = errors.New("not initialized")
)
