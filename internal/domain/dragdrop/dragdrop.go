// Package dragdrop implements the card drag/drop controller. A drop exchanges
// the payloads of two cards; the slot order of the board never changes.
package dragdrop

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/okian/matchboard/internal/domain/model"
)

// ErrNoDragSource is returned by Drop when no drag is in progress.
var ErrNoDragSource = errors.New("no drag in progress")

// Board is the card registry as seen by the controller.
type Board interface {
	Has(id int64) bool
	SetDimmed(id int64, dimmed bool) error
	SetHover(id int64, hover bool) error
	ClearDragStyles()
	Swap(a, b int64) error
}

// Exchange swaps every payload field of a and b while each keeps its slot.
func Exchange(a, b *model.Card) {
	sa, sb := a.Slot, b.Slot
	*a, *b = *b, *a
	a.Slot, b.Slot = sa, sb
}

// Controller tracks the single drag session of the board.
type Controller struct {
	mu     sync.Mutex
	board  Board
	source int64
	active bool
}

// NewController creates a controller over board.
func NewController(board Board) *Controller {
	return &Controller{board: board}
}

// Source returns the card being dragged, if any.
func (c *Controller) Source() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source, c.active
}

// Start records id as the drag source and dims it. A drag already in
// progress is ended first.
func (c *Controller) Start(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		c.endLocked()
	}
	if err := c.board.SetDimmed(id, true); err != nil {
		return err
	}
	c.source, c.active = id, true
	return nil
}

// Enter highlights id when it is a valid drop target.
func (c *Controller) Enter(id int64) (bool, error) {
	return c.hover(id, true)
}

// Leave clears the highlight of id.
func (c *Controller) Leave(id int64) (bool, error) {
	return c.hover(id, false)
}

func (c *Controller) hover(id int64, on bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active || id == c.source || !c.board.Has(id) {
		return false, nil
	}
	if err := c.board.SetHover(id, on); err != nil {
		return false, err
	}
	return true, nil
}

// Drop swaps the source with target and ends the session. Dropping a card on
// itself only ends the session.
func (c *Controller) Drop(target int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return false, ErrNoDragSource
	}
	defer c.endLocked()

	if target == c.source {
		return false, nil
	}
	if err := c.board.Swap(c.source, target); err != nil {
		return false, err
	}
	return true, nil
}

// End restores opacity, clears hover on every card and forgets the source.
func (c *Controller) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
}

func (c *Controller) endLocked() {
	c.board.ClearDragStyles()
	c.source, c.active = 0, false
}
