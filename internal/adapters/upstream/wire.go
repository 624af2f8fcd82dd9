package upstream

import "github.com/okian/matchboard/internal/domain/model"

type liveEnvelope struct {
	Events []wireEvent `json:"events"`
}

type wireEvent struct {
	ID                       int64      `json:"id"`
	HomeTeam                 wireTeam   `json:"homeTeam"`
	AwayTeam                 wireTeam   `json:"awayTeam"`
	HomeScore                wireScore  `json:"homeScore"`
	AwayScore                wireScore  `json:"awayScore"`
	Tournament               wireNamed  `json:"tournament"`
	Status                   wireStatus `json:"status"`
	HasEventPlayerHeatMap    bool       `json:"hasEventPlayerHeatMap"`
	HasEventPlayerStatistics bool       `json:"hasEventPlayerStatistics"`
}

type wireTeam struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

type wireScore struct {
	Current int `json:"current"`
}

type wireNamed struct {
	Name string `json:"name"`
}

type wireStatus struct {
	Description string `json:"description"`
}

type statsEnvelope struct {
	Statistics []wirePeriod `json:"statistics"`
}

type wirePeriod struct {
	Period string      `json:"period"`
	Groups []wireGroup `json:"groups"`
}

type wireGroup struct {
	GroupName string     `json:"groupName"`
	Items     []wireItem `json:"statisticsItems"`
}

type wireItem struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Home string `json:"home"`
	Away string `json:"away"`
}

func (t wireTeam) display() string {
	if t.ShortName != "" {
		return t.ShortName
	}
	return t.Name
}

func (e wireEvent) toModel() model.Match {
	return model.Match{
		ID:            e.ID,
		HomeTeam:      e.HomeTeam.display(),
		AwayTeam:      e.AwayTeam.display(),
		HomeScore:     e.HomeScore.Current,
		AwayScore:     e.AwayScore.Current,
		League:        e.Tournament.Name,
		HasHeatMap:    e.HasEventPlayerHeatMap,
		HasStatistics: e.HasEventPlayerStatistics,
		Status:        e.Status.Description,
	}
}

// flatten returns the items of period p in wire order, or nil when the
// payload has no such period.
func (s statsEnvelope) flatten(p model.Period) []model.StatItem {
	for _, wp := range s.Statistics {
		if model.Period(wp.Period) != p {
			continue
		}
		var out []model.StatItem
		for _, g := range wp.Groups {
			for _, it := range g.Items {
				out = append(out, model.StatItem{Key: it.Key, Name: it.Name, Home: it.Home, Away: it.Away})
			}
		}
		return out
	}
	return nil
}
