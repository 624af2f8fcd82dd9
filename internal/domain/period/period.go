// Package period handles the per-card period selector.
package period

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okian/matchboard/internal/domain/model"
)

// ErrInvalidPeriod is returned for an unknown period name.
var ErrInvalidPeriod = errors.New("invalid period")

// ErrFetchInFlight is returned when a card's period changes while its stats
// are being fetched.
var ErrFetchInFlight = errors.New("stats fetch in flight")

// Parse converts a case-insensitive name into a Period.
func Parse(s string) (model.Period, error) {
	p := model.Period(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.Wrapf(ErrInvalidPeriod, "%q", s)
	}
	return p, nil
}

// Select moves card to p. It refuses while a fetch is in flight, and resets the
// statistics grid when the period actually changes. The returned bool reports
// whether a fetch for the new period is due.
func Select(card *model.Card, p model.Period) (bool, error) {
	if !p.Valid() {
		return false, errors.Wrapf(ErrInvalidPeriod, "%q", p)
	}
	if card.Fetching {
		return false, errors.Wrapf(ErrFetchInFlight, "match %d", card.MatchID)
	}
	if card.Period != p {
		card.Period = p
		card.ResetStats()
	}
	return true, nil
}
