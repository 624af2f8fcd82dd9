// Package league implements the league filter.
package league

import (
	"sort"

	"github.com/okian/matchboard/internal/domain/model"
)

// All is the sentinel selection that shows every card.
const All = "All"

// Normalize maps an empty selection to All.
func Normalize(filter string) string {
	if filter == "" {
		return All
	}
	return filter
}

// Shows reports whether a card of cardLeague is visible under filter.
func Shows(filter, cardLeague string) bool {
	filter = Normalize(filter)
	return filter == All || filter == cardLeague
}

// Apply sets visibility of every card for filter. Each card left visible has
// its widget revision bumped so the renderer reloads the embedded widget.
// It returns the number of visible cards.
func Apply(cards []*model.Card, filter string) int {
	visible := 0
	for _, c := range cards {
		c.Visible = Shows(filter, c.League)
		if c.Visible {
			c.WidgetRevision++
			visible++
		}
	}
	return visible
}

// Distinct returns the sorted set of non-empty leagues in matches.
func Distinct(matches []model.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.League == "" {
			continue
		}
		if _, ok := seen[m.League]; ok {
			continue
		}
		seen[m.League] = struct{}{}
		out = append(out, m.League)
	}
	sort.Strings(out)
	return out
}
