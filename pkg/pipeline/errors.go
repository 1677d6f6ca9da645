package pipeline

import "github.com/pkg/errors"

var (
	// ErrInvalidQueueSize is returned by New for queue sizes below one.
	ErrInvalidQueueSize = errors.New("queue size must be greater than zero")
	// ErrEmptyChain is returned by New when no stages are given.
	ErrEmptyChain = errors.New("at least one stage must be set")
	// ErrNotInitialized is returned by Run before a successful Init.
	ErrNotInitialized = errors.New("pipeline not initialized")
)
