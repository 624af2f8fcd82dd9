package simulator

import "github.com/okian/matchboard/internal/domain/model"

type liveBody struct {
	Events []event `json:"events"`
}

type team struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type score struct {
	Current int `json:"current"`
}

type named struct {
	Name string `json:"name"`
}

type status struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

type event struct {
	ID                       int64  `json:"id"`
	HomeTeam                 team   `json:"homeTeam"`
	AwayTeam                 team   `json:"awayTeam"`
	HomeScore                score  `json:"homeScore"`
	AwayScore                score  `json:"awayScore"`
	Tournament               named  `json:"tournament"`
	Status                   status `json:"status"`
	HasEventPlayerHeatMap    bool   `json:"hasEventPlayerHeatMap"`
	HasEventPlayerStatistics bool   `json:"hasEventPlayerStatistics"`
}

type statsBody struct {
	Statistics []periodBody `json:"statistics"`
}

type periodBody struct {
	Period string      `json:"period"`
	Groups []groupBody `json:"groups"`
}

type groupBody struct {
	GroupName string     `json:"groupName"`
	Items     []itemBody `json:"statisticsItems"`
}

type itemBody struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

func toEvent(m model.Match) event {
	return event{
		ID:                       m.ID,
		HomeTeam:                 team{Name: m.HomeTeam, ShortName: m.HomeTeam},
		AwayTeam:                 team{Name: m.AwayTeam, ShortName: m.AwayTeam},
		HomeScore:                score{Current: m.HomeScore},
		AwayScore:                score{Current: m.AwayScore},
		Tournament:               named{Name: m.League},
		Status:                   status{Description: m.Status, Type: "inprogress"},
		HasEventPlayerHeatMap:    m.HasHeatMap,
		HasEventPlayerStatistics: m.HasStatistics,
	}
}

// toPeriod splits items into two groups the way the real API groups them.
func toPeriod(p model.Period, items []model.StatItem) periodBody {
	half := (len(items) + 1) / 2
	groups := []groupBody{{GroupName: "Match overview"}, {GroupName: "Shots"}}
	for i, it := range items {
		g := 0
		if i >= half {
			g = 1
		}
		groups[g].Items = append(groups[g].Items, itemBody(it))
	}
	return periodBody{Period: string(p), Groups: groups}
}
