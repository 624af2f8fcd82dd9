package model

import "github.com/cockroachdb/errors"

// Domain-level error kinds.
var (
	// ErrNoLiveMatches is returned by a refresh that fetched an empty list.
	ErrNoLiveMatches = errors.New("no live matches")
	// ErrStatsFetchFailed marks a failed statistics fetch for one match.
	ErrStatsFetchFailed = errors.New("stats fetch failed")
)
