// Package model defines the domain records shared by the reconciliation loop,
// the stores and the HTTP layer.
package model

// Match is one live fixture as reported by the upstream API.
// Records are immutable per poll and replaced wholesale on refresh.
type Match struct {
	ID            int64  `json:"id"`
	HomeTeam      string `json:"homeTeam"`
	AwayTeam      string `json:"awayTeam"`
	HomeScore     int    `json:"homeScore"`
	AwayScore     int    `json:"awayScore"`
	League        string `json:"league"`
	HasHeatMap    bool   `json:"hasHeatMap"`
	HasStatistics bool   `json:"hasStatistics"`
	Status        string `json:"status,omitempty"`
}

// StatItem is a single statistic of one period, flattened out of its group.
type StatItem struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}
