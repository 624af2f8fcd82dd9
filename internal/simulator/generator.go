package simulator

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/okian/matchboard/internal/domain/model"
)

// Probabilities applied to every live match on each Step.
const (
	goalChance  = 0.08
	endChance   = 0.03
	startChance = 0.25
	maxLive     = 24
)

var (
	leagues = []string{"Premier League", "LaLiga", "Serie A", "Bundesliga", "Ligue 1"} //nolint:gochecknoglobals // name pool
	clubs   = []string{                                                                 //nolint:gochecknoglobals // name pool
		"Arsenal", "Chelsea", "Everton", "Fulham", "Real Madrid", "Sevilla", "Valencia", "Girona",
		"Milan", "Inter", "Napoli", "Roma", "Bayern", "Dortmund", "Leipzig", "Freiburg",
		"PSG", "Lyon", "Monaco", "Lille",
	}
)

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1_000_000))
	return float64(n.Int64()) / 1_000_000
}

func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Seed fills the feed with n live matches and their statistics.
func (f *Feed) Seed(n int) {
	for i := 0; i < n; i++ {
		f.startMatch()
	}
}

// Step advances the simulation: goals are scored, some matches end and new
// ones kick off. Statistics of every live match drift.
func (f *Feed) Step() {
	f.mu.Lock()
	kept := f.matches[:0]
	for _, m := range f.matches {
		if randomFloat() < endChance {
			delete(f.stats, m.ID)
			continue
		}
		if randomFloat() < goalChance {
			if randomFloat() < 0.5 {
				m.HomeScore++
			} else {
				m.AwayScore++
			}
		}
		f.driftStatsLocked(m.ID)
		kept = append(kept, m)
	}
	f.matches = kept
	live := len(f.matches)
	f.mu.Unlock()

	if live < maxLive && randomFloat() < startChance {
		f.startMatch()
	}
}

func (f *Feed) startMatch() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	home := clubs[randomInt(len(clubs))]
	away := clubs[randomInt(len(clubs))]
	for away == home {
		away = clubs[randomInt(len(clubs))]
	}
	m := model.Match{
		ID:            f.nextID,
		HomeTeam:      home,
		AwayTeam:      away,
		League:        leagues[randomInt(len(leagues))],
		HasHeatMap:    randomFloat() < 0.7,
		HasStatistics: randomFloat() < 0.9,
		Status:        "1st half",
	}
	f.matches = append(f.matches, m)

	f.stats[m.ID] = map[model.Period][]model.StatItem{
		model.PeriodAll: baseStats(),
		model.Period1st: baseStats(),
	}
}

func baseStats() []model.StatItem {
	return []model.StatItem{
		{Key: "ballPossession", Name: "Ball possession", Home: "50%", Away: "50%"},
		{Key: "expectedGoals", Name: "Expected goals", Home: "0.00", Away: "0.00"},
		{Key: "bigChanceCreated", Name: "Big chances", Home: "0", Away: "0"},
		{Key: "totalShotsOnGoal", Name: "Total shots", Home: "0", Away: "0"},
		{Key: "shotsOnGoal", Name: "Shots on target", Home: "0", Away: "0"},
		{Key: "cornerKicks", Name: "Corner kicks", Home: "0", Away: "0"},
		{Key: "fouls", Name: "Fouls", Home: "0", Away: "0"},
		{Key: "yellowCards", Name: "Yellow cards", Home: "0", Away: "0"},
		{Key: "redCards", Name: "Red cards", Home: "0", Away: "0"},
		{Key: "passes", Name: "Passes", Home: "0", Away: "0"},
	}
}

// driftStatsLocked bumps counters of a match. Must be called with f.mu held.
func (f *Feed) driftStatsLocked(id int64) {
	for _, items := range f.stats[id] {
		for i := range items {
			it := &items[i]
			switch it.Key {
			case "ballPossession":
				home := 35 + randomInt(31)
				it.Home, it.Away = strconv.Itoa(home)+"%", strconv.Itoa(100-home)+"%"
			case "expectedGoals":
				continue
			default:
				if randomFloat() < 0.2 {
					it.Home = bump(it.Home)
				}
				if randomFloat() < 0.2 {
					it.Away = bump(it.Away)
				}
			}
		}
	}
}

func bump(v string) string {
	n, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	return strconv.Itoa(n + 1)
}
