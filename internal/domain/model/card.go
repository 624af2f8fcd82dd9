package model

import "time"

// Placeholder is shown for a statistic that has no value yet.
const Placeholder = "-"

// StatLine is one row of a card's statistics grid.
type StatLine struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// Card is the rendered unit of one match. Slot is the card's position on the
// board and stays with the position when payloads are swapped.
type Card struct {
	MatchID        int64      `json:"id"`
	League         string     `json:"league"`
	Scoreboard     string     `json:"scoreboard"`
	Ended          bool       `json:"ended"`
	Period         Period     `json:"period"`
	Stats          []StatLine `json:"stats"`
	Visible        bool       `json:"visible"`
	Selected       bool       `json:"selected"`
	Dimmed         bool       `json:"dimmed"`
	Hover          bool       `json:"hover"`
	WidgetURL      string     `json:"widgetUrl"`
	WidgetRevision int        `json:"widgetRevision"`
	Slot           int        `json:"slot"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Fetching is set while a stats fetch for this card is in flight.
	Fetching bool `json:"-"`
}

// Clone returns a deep copy safe to hand out of a store.
func (c *Card) Clone() Card {
	out := *c
	out.Stats = append([]StatLine(nil), c.Stats...)
	return out
}

// PlaceholderStats builds an empty grid for keys.
func PlaceholderStats(keys []string) []StatLine {
	lines := make([]StatLine, len(keys))
	for i, k := range keys {
		lines[i] = StatLine{Key: k, Home: Placeholder, Away: Placeholder}
	}
	return lines
}

// ResetStats puts every line of the grid back to placeholders.
func (c *Card) ResetStats() {
	for i := range c.Stats {
		c.Stats[i].Home = Placeholder
		c.Stats[i].Away = Placeholder
	}
}

// PatchStats overwrites the lines whose key appears in items. Items with a
// key the grid does not display are ignored. It returns the number of lines
// whose values changed.
func (c *Card) PatchStats(items []StatItem) int {
	changed := 0
	for _, it := range items {
		for i := range c.Stats {
			line := &c.Stats[i]
			if line.Key != it.Key {
				continue
			}
			if it.Name != "" {
				line.Name = it.Name
			}
			if line.Home != it.Home || line.Away != it.Away {
				line.Home, line.Away = it.Home, it.Away
				changed++
			}
			break
		}
	}
	return changed
}
