package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/domain/dragdrop"
	"github.com/okian/matchboard/internal/domain/league"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/internal/domain/period"
	"github.com/okian/matchboard/internal/domain/scoreboard"
)

const defaultWidgetURL = "https://widgets.sofascore.com/embed/attackMomentum?id=%d&widgetBackground=Gray&v=2"

// CardStore is the explicit card registry. Cards live in slots; slots[i].Slot
// is always i. All mutations are serialized and callers only get copies.
type CardStore struct {
	mu        sync.Mutex
	slots     []*model.Card
	index     map[int64]int
	dismissed map[int64]struct{}
	filter    string
	statKeys  []string
	widgetURL string
}

// NewCardStore creates an empty registry showing all leagues.
func NewCardStore(opts ...Option) *CardStore {
	s := &CardStore{
		index:     map[int64]int{},
		dismissed: map[int64]struct{}{},
		filter:    league.All,
		statKeys:  defaultStatKeys(),
		widgetURL: defaultWidgetURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create appends a card for m in the next slot. Cards honour the active
// league filter.
func (s *CardStore) Create(_ context.Context, m model.Match) (model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[m.ID]; ok {
		return model.Card{}, errors.Wrapf(ErrCardExists, "match %d", m.ID)
	}
	if _, ok := s.dismissed[m.ID]; ok {
		return model.Card{}, errors.Wrapf(ErrCardDismissed, "match %d", m.ID)
	}

	c := &model.Card{
		MatchID:    m.ID,
		League:     m.League,
		Scoreboard: scoreboard.Text(m),
		Period:     model.PeriodAll,
		Stats:      model.PlaceholderStats(s.statKeys),
		Visible:    league.Shows(s.filter, m.League),
		WidgetURL:  fmt.Sprintf(s.widgetURL, m.ID),
		Slot:       len(s.slots),
		UpdatedAt:  time.Now(),
	}
	s.index[m.ID] = c.Slot
	s.slots = append(s.slots, c)
	return c.Clone(), nil
}

// Get returns a copy of the card of match id.
func (s *CardStore) Get(_ context.Context, id int64) (model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cardLocked(id)
	if err != nil {
		return model.Card{}, err
	}
	return c.Clone(), nil
}

// List returns copies of every card in slot order.
func (s *CardStore) List(_ context.Context) []model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Card, len(s.slots))
	for i, c := range s.slots {
		out[i] = c.Clone()
	}
	return out
}

// Remove deletes a card and remembers its match as dismissed. Later slots
// move up by one.
func (s *CardStore) Remove(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return errors.Wrapf(ErrCardNotFound, "match %d", id)
	}
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.slots); j++ {
		s.slots[j].Slot = j
		s.index[s.slots[j].MatchID] = j
	}
	s.dismissed[id] = struct{}{}
	return nil
}

// Dismissed reports whether the card of match id was closed by the user.
func (s *CardStore) Dismissed(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.dismissed[id]
	return ok
}

// Update applies fn to the card under the store lock. When fn fails the card
// is returned as it stands along with the error.
func (s *CardStore) Update(_ context.Context, id int64, fn func(*model.Card) error) (model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cardLocked(id)
	if err != nil {
		return model.Card{}, err
	}
	if err := fn(c); err != nil {
		return c.Clone(), err
	}
	c.UpdatedAt = time.Now()
	return c.Clone(), nil
}

// BeginFetch marks a stats fetch in flight and returns the period to fetch.
// It fails with period.ErrFetchInFlight when one is already running.
func (s *CardStore) BeginFetch(_ context.Context, id int64) (model.Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cardLocked(id)
	if err != nil {
		return "", err
	}
	if c.Fetching {
		return c.Period, errors.Wrapf(period.ErrFetchInFlight, "match %d", id)
	}
	c.Fetching = true
	return c.Period, nil
}

// EndFetch clears the in-flight flag. Unknown IDs are ignored since the card
// may have been removed while its fetch ran.
func (s *CardStore) EndFetch(_ context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, err := s.cardLocked(id); err == nil {
		c.Fetching = false
	}
}

// PatchStats overwrites the stat lines of the card from items. The bool is
// false, and nothing changes, when p is no longer the selected period; the int
// counts the lines written.
func (s *CardStore) PatchStats(_ context.Context, id int64, p model.Period, items []model.StatItem) (model.Card, int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cardLocked(id)
	if err != nil {
		return model.Card{}, 0, false, err
	}
	if c.Period != p {
		return c.Clone(), 0, false, nil
	}
	n := c.PatchStats(items)
	if n > 0 {
		c.UpdatedAt = time.Now()
	}
	return c.Clone(), n, true, nil
}

// ApplyFilter sets the active league filter and returns every card the filter
// shows, in slot order.
func (s *CardStore) ApplyFilter(_ context.Context, name string) []model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = league.Normalize(name)
	league.Apply(s.slots, s.filter)

	shown := make([]model.Card, 0, len(s.slots))
	for _, c := range s.slots {
		if c.Visible {
			shown = append(shown, c.Clone())
		}
	}
	return shown
}

// Filter returns the active league filter.
func (s *CardStore) Filter(_ context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Count returns the number of cards and how many of them are visible.
func (s *CardStore) Count(_ context.Context) (total, visible int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.slots {
		if c.Visible {
			visible++
		}
	}
	return len(s.slots), visible
}

// Has reports whether match id has a card.
func (s *CardStore) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// SetDimmed sets the drag-source opacity flag.
func (s *CardStore) SetDimmed(id int64, dimmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cardLocked(id)
	if err != nil {
		return err
	}
	c.Dimmed = dimmed
	return nil
}

// SetHover sets the drop-target highlight.
func (s *CardStore) SetHover(id int64, hover bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cardLocked(id)
	if err != nil {
		return err
	}
	c.Hover = hover
	return nil
}

// ClearDragStyles resets dimming and hover on every card.
func (s *CardStore) ClearDragStyles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.slots {
		c.Dimmed, c.Hover = false, false
	}
}

// Swap exchanges the payloads of the cards of a and b. Slot order and the
// number of cards are unchanged.
func (s *CardStore) Swap(a, b int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ia, ok := s.index[a]
	if !ok {
		return errors.Wrapf(ErrCardNotFound, "match %d", a)
	}
	ib, ok := s.index[b]
	if !ok {
		return errors.Wrapf(ErrCardNotFound, "match %d", b)
	}
	if ia == ib {
		return nil
	}
	dragdrop.Exchange(s.slots[ia], s.slots[ib])
	s.index[a], s.index[b] = ib, ia

	now := time.Now()
	s.slots[ia].UpdatedAt, s.slots[ib].UpdatedAt = now, now
	return nil
}

func (s *CardStore) cardLocked(id int64) (*model.Card, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, errors.Wrapf(ErrCardNotFound, "match %d", id)
	}
	return s.slots[i], nil
}
