package repository

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/domain/league"
	"github.com/okian/matchboard/internal/domain/model"
)

// MatchStore keeps the latest live list. Refreshes replace it as a whole.
type MatchStore struct {
	mu          sync.RWMutex
	matches     []model.Match
	byID        map[int64]int
	refreshedAt time.Time
}

// NewMatchStore creates an empty registry.
func NewMatchStore() *MatchStore {
	return &MatchStore{byID: map[int64]int{}}
}

// Replace swaps the whole registry for matches. The first record wins when an
// ID repeats.
func (s *MatchStore) Replace(_ context.Context, matches []model.Match) {
	list := append([]model.Match(nil), matches...)
	byID := make(map[int64]int, len(list))
	for i, m := range list {
		if _, dup := byID[m.ID]; !dup {
			byID[m.ID] = i
		}
	}

	s.mu.Lock()
	s.matches, s.byID, s.refreshedAt = list, byID, time.Now()
	s.mu.Unlock()
}

// Lookup returns the record of match id or ErrMatchNotFound.
func (s *MatchStore) Lookup(_ context.Context, id int64) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.Match{}, errors.Wrapf(ErrMatchNotFound, "match %d", id)
	}
	return s.matches[i], nil
}

// List returns the records in upstream order.
func (s *MatchStore) List(_ context.Context) []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Match(nil), s.matches...)
}

// Leagues returns the distinct leagues of the registry, sorted.
func (s *MatchStore) Leagues(ctx context.Context) []string {
	return league.Distinct(s.List(ctx))
}

// Count returns the number of live matches.
func (s *MatchStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// RefreshedAt returns when the registry was last replaced.
func (s *MatchStore) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
