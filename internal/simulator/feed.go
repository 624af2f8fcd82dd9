// Package simulator serves a local stand-in for the football statistics API:
// the live-events list and per-match statistics, with data that evolves over
// time. It backs cmd/fake-feed and the integration tests.
package simulator

import (
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/okian/matchboard/internal/domain/model"
)

// Paths served by the feed, relative to its base URL.
const (
	LivePath       = "/sport/football/events/live"
	StatisticsPath = "/event/{id}/statistics"
)

// Feed holds the simulated upstream state.
type Feed struct {
	mu       sync.RWMutex
	matches  []model.Match
	stats    map[int64]map[model.Period][]model.StatItem
	statusOf map[string]int // forced status code per endpoint ("live", "statistics")
	requests map[string]int
	nextID   int64
}

// New creates an empty feed.
func New() *Feed {
	return &Feed{
		stats:    make(map[int64]map[model.Period][]model.StatItem),
		statusOf: make(map[string]int),
		requests: make(map[string]int),
		nextID:   10_000_000,
	}
}

// SetMatches replaces the live list.
func (f *Feed) SetMatches(matches ...model.Match) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = append([]model.Match(nil), matches...)
}

// Matches returns a copy of the live list.
func (f *Feed) Matches() []model.Match {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]model.Match(nil), f.matches...)
}

// SetStatistics sets the items of one period of a match.
func (f *Feed) SetStatistics(matchID int64, p model.Period, items ...model.StatItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats[matchID] == nil {
		f.stats[matchID] = make(map[model.Period][]model.StatItem)
	}
	f.stats[matchID][p] = append([]model.StatItem(nil), items...)
}

// FailWith forces endpoint ("live" or "statistics") to answer with status.
// A zero status restores normal answers.
func (f *Feed) FailWith(endpoint string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.statusOf, endpoint)
		return
	}
	f.statusOf[endpoint] = status
}

// Requests returns how many requests endpoint has served.
func (f *Feed) Requests(endpoint string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.requests[endpoint]
}

// Handler returns the HTTP surface of the feed.
func (f *Feed) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get(LivePath, f.handleLive)
	r.Get(StatisticsPath, f.handleStatistics)
	return r
}

func (f *Feed) begin(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[endpoint]++
	return f.statusOf[endpoint]
}

func (f *Feed) handleLive(w http.ResponseWriter, _ *http.Request) {
	if status := f.begin("live"); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	f.mu.RLock()
	events := make([]event, 0, len(f.matches))
	for _, m := range f.matches {
		events = append(events, toEvent(m))
	}
	f.mu.RUnlock()

	writeJSON(w, liveBody{Events: events})
}

func (f *Feed) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if status := f.begin("statistics"); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	f.mu.RLock()
	byPeriod, ok := f.stats[id]
	body := statsBody{Statistics: []periodBody{}}
	if ok {
		periods := make([]model.Period, 0, len(byPeriod))
		for p := range byPeriod {
			periods = append(periods, p)
		}
		sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
		for _, p := range periods {
			body.Statistics = append(body.Statistics, toPeriod(p, byPeriod[p]))
		}
	}
	f.mu.RUnlock()

	if !ok {
		http.Error(w, `{"error":{"code":404,"message":"Not Found"}}`, http.StatusNotFound)
		return
	}
	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}
