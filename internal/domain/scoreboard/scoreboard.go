// Package scoreboard formats scoreboard text and decides how a card's
// scoreboard changes on a reconciliation tick.
package scoreboard

import (
	"fmt"
	"strings"

	"github.com/okian/matchboard/internal/domain/model"
)

// EndedMarker flags a finished match. Once present the text is final.
const EndedMarker = "ENDED"

const endedSuffix = " [" + EndedMarker + "]"

// Text formats "{home} [{h}] - [{a}] {away}".
func Text(m model.Match) string {
	return fmt.Sprintf("%s [%d] - [%d] %s", m.HomeTeam, m.HomeScore, m.AwayScore, m.AwayTeam)
}

// IsEnded reports whether text already carries the ENDED marker.
func IsEnded(text string) bool {
	return strings.Contains(text, EndedMarker)
}

// MarkEnded appends the ENDED marker unless it is already present.
func MarkEnded(text string) string {
	if IsEnded(text) {
		return text
	}
	return text + endedSuffix
}

// Decision is the outcome of Reconcile for one card.
type Decision struct {
	Text    string
	Changed bool
	Ended   bool
}

// Reconcile applies the per-tick policy to a card's current text. m is the
// card's record in the refreshed registry, nil when the match is gone.
func Reconcile(current string, ended bool, m *model.Match) Decision {
	if ended || IsEnded(current) {
		return Decision{Text: current, Ended: true}
	}
	if m == nil {
		return Decision{Text: MarkEnded(current), Changed: true, Ended: true}
	}
	next := Text(*m)
	return Decision{Text: next, Changed: next != current}
}
