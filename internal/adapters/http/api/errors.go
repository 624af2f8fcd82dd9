package api

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/adapters/repository"
	"github.com/okian/matchboard/internal/domain/dragdrop"
	"github.com/okian/matchboard/internal/domain/period"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInvalidID  = errors.New("invalid card id")
)

// statusFor maps a service error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrCardNotFound), errors.Is(err, repository.ErrMatchNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, period.ErrFetchInFlight):
		return http.StatusConflict, "fetch_in_flight"
	case errors.Is(err, dragdrop.ErrNoDragSource):
		return http.StatusConflict, "no_drag_source"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidID), errors.Is(err, period.ErrInvalidPeriod):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
