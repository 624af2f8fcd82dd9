package repository

import "github.com/cockroachdb/errors"

// Sentinel kinds for registry errors.
var (
	ErrMatchNotFound = errors.New("match not found")
	ErrCardNotFound  = errors.New("card not found")
	ErrCardExists    = errors.New("card already exists")
	ErrCardDismissed = errors.New("card was dismissed")
)
