package upstream

import "github.com/cockroachdb/errors"

// Sentinel kinds for upstream failures.
var (
	ErrUpstreamStatus = errors.New("upstream returned non-2xx status")
	ErrDecode         = errors.New("decode upstream payload")
)
