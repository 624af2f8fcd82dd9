// Package repository holds the in-memory match and card registries.
package repository

import (
	"context"
	"time"

	"github.com/okian/matchboard/internal/domain/model"
)

// Matches is the registry of the latest live list.
type Matches interface {
	// Replace swaps in a freshly fetched list. The previous list is dropped.
	Replace(ctx context.Context, matches []model.Match)
	// Lookup returns the record for id or ErrMatchNotFound.
	Lookup(ctx context.Context, id int64) (model.Match, error)
	// List returns the records in upstream order.
	List(ctx context.Context) []model.Match
	// Leagues returns the sorted distinct leagues of the list.
	Leagues(ctx context.Context) []string
	Count(ctx context.Context) int
	RefreshedAt() time.Time
}

// Cards is the registry of rendered cards in slot order.
type Cards interface {
	Create(ctx context.Context, m model.Match) (model.Card, error)
	Get(ctx context.Context, id int64) (model.Card, error)
	List(ctx context.Context) []model.Card
	Remove(ctx context.Context, id int64) error
	Dismissed(ctx context.Context, id int64) bool
	// Update runs fn on the live card under the registry lock and returns a
	// copy of the result. An error from fn is returned as is.
	Update(ctx context.Context, id int64, fn func(*model.Card) error) (model.Card, error)
	// BeginFetch marks a stats fetch in flight and returns the card's period.
	BeginFetch(ctx context.Context, id int64) (model.Period, error)
	EndFetch(ctx context.Context, id int64)
	// PatchStats applies items fetched for p. It reports false when the card
	// has moved to another period since and the items were discarded.
	PatchStats(ctx context.Context, id int64, p model.Period, items []model.StatItem) (model.Card, int, bool, error)
	ApplyFilter(ctx context.Context, league string) []model.Card
	Filter(ctx context.Context) string
	Count(ctx context.Context) (total, visible int)

	// Drag/drop surface.
	Has(id int64) bool
	SetDimmed(id int64, dimmed bool) error
	SetHover(id int64, hover bool) error
	ClearDragStyles()
	Swap(a, b int64) error
}
