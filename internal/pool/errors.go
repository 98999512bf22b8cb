package pool

import "errors"

var (
	// ErrPoolExhausted means no instance is available. Recoverable; the caller
	// may retry after a release. The manager never queues allocations.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrSessionNotFound means the session id is unknown or already ended.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAlreadyInitialized means Initialize was called twice. Startup misuse.
	ErrAlreadyInitialized = errors.New("pool already initialized")

	// ErrNotInitialized means an operation ran before Initialize.
	ErrNotInitialized = errors.New("pool not initialized")

	ErrInvalidArgument = errors.New("invalid argument")
)
