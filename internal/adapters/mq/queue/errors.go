package queue

import "github.com/cockroachdb/errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull   = errors.New("stats queue full")
	ErrQueueClosed = errors.New("stats queue closed")
)
