package dragdrop_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/matchboard/internal/domain/dragdrop"
	"github.com/okian/matchboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var errMissing = errors.New("missing card")

type fakeBoard struct {
	slots []*model.Card
	swaps int
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{slots: []*model.Card{
		{MatchID: 1, League: "X", Scoreboard: "A [1] - [0] B", Slot: 0, Period: model.Period1st},
		{MatchID: 2, League: "Y", Scoreboard: "C [0] - [2] D", Slot: 1, Period: model.PeriodAll},
		{MatchID: 3, League: "Z", Scoreboard: "E [0] - [0] F", Slot: 2, Period: model.PeriodAll},
	}}
}

func (b *fakeBoard) find(id int64) *model.Card {
	for _, c := range b.slots {
		if c.MatchID == id {
			return c
		}
	}
	return nil
}

func (b *fakeBoard) Has(id int64) bool { return b.find(id) != nil }

func (b *fakeBoard) SetDimmed(id int64, dimmed bool) error {
	c := b.find(id)
	if c == nil {
		return errMissing
	}
	c.Dimmed = dimmed
	return nil
}

func (b *fakeBoard) SetHover(id int64, hover bool) error {
	c := b.find(id)
	if c == nil {
		return errMissing
	}
	c.Hover = hover
	return nil
}

func (b *fakeBoard) ClearDragStyles() {
	for _, c := range b.slots {
		c.Dimmed, c.Hover = false, false
	}
}

func (b *fakeBoard) Swap(x, y int64) error {
	cx, cy := b.find(x), b.find(y)
	if cx == nil || cy == nil {
		return errMissing
	}
	dragdrop.Exchange(cx, cy)
	b.swaps++
	return nil
}

func TestExchange(t *testing.T) {
	Convey("Given two cards in different slots", t, func() {
		a := &model.Card{MatchID: 1, League: "X", Scoreboard: "a", Slot: 0, Stats: model.PlaceholderStats([]string{"fouls"})}
		b := &model.Card{MatchID: 2, League: "Y", Scoreboard: "b", Slot: 4}

		dragdrop.Exchange(a, b)

		Convey("Then payloads are exchanged and slots stay", func() {
			So(a.MatchID, ShouldEqual, 2)
			So(a.League, ShouldEqual, "Y")
			So(a.Scoreboard, ShouldEqual, "b")
			So(a.Slot, ShouldEqual, 0)
			So(b.MatchID, ShouldEqual, 1)
			So(b.League, ShouldEqual, "X")
			So(b.Stats, ShouldHaveLength, 1)
			So(b.Slot, ShouldEqual, 4)
		})
	})
}

func TestController(t *testing.T) {
	Convey("Given a board of three cards", t, func() {
		board := newFakeBoard()
		ctl := dragdrop.NewController(board)

		Convey("When dropping without a drag", func() {
			_, err := ctl.Drop(2)
			So(errors.Is(err, dragdrop.ErrNoDragSource), ShouldBeTrue)
		})

		Convey("When dragging card 1", func() {
			So(ctl.Start(1), ShouldBeNil)

			Convey("Then it is dimmed and recorded as the source", func() {
				So(board.slots[0].Dimmed, ShouldBeTrue)
				src, ok := ctl.Source()
				So(ok, ShouldBeTrue)
				So(src, ShouldEqual, 1)
			})

			Convey("And entering the source itself does nothing", func() {
				ok, err := ctl.Enter(1)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(board.slots[0].Hover, ShouldBeFalse)
			})

			Convey("And entering then leaving a target toggles hover", func() {
				ok, _ := ctl.Enter(2)
				So(ok, ShouldBeTrue)
				So(board.slots[1].Hover, ShouldBeTrue)
				ok, _ = ctl.Leave(2)
				So(ok, ShouldBeTrue)
				So(board.slots[1].Hover, ShouldBeFalse)
			})

			Convey("And dropping on card 2", func() {
				_, _ = ctl.Enter(2)
				swapped, err := ctl.Drop(2)

				Convey("Then the payloads swap and the count is unchanged", func() {
					So(err, ShouldBeNil)
					So(swapped, ShouldBeTrue)
					So(board.slots, ShouldHaveLength, 3)
					So(board.slots[0].MatchID, ShouldEqual, 2)
					So(board.slots[0].League, ShouldEqual, "Y")
					So(board.slots[0].Scoreboard, ShouldEqual, "C [0] - [2] D")
					So(board.slots[1].MatchID, ShouldEqual, 1)
					So(board.slots[1].League, ShouldEqual, "X")
					So(board.slots[1].Period, ShouldEqual, model.Period1st)
				})

				Convey("Then drag styles are cleared and the session is over", func() {
					for _, c := range board.slots {
						So(c.Dimmed, ShouldBeFalse)
						So(c.Hover, ShouldBeFalse)
					}
					_, ok := ctl.Source()
					So(ok, ShouldBeFalse)
				})

				Convey("Then a repeated drop does not swap again", func() {
					_, err := ctl.Drop(2)
					So(errors.Is(err, dragdrop.ErrNoDragSource), ShouldBeTrue)
					So(board.swaps, ShouldEqual, 1)
				})
			})

			Convey("And dropping on itself", func() {
				swapped, err := ctl.Drop(1)
				So(err, ShouldBeNil)
				So(swapped, ShouldBeFalse)
				So(board.swaps, ShouldEqual, 0)
			})

			Convey("And ending the drag", func() {
				ctl.End()
				So(board.slots[0].Dimmed, ShouldBeFalse)
				_, ok := ctl.Source()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When dragging an unknown card", func() {
			So(ctl.Start(99), ShouldNotBeNil)
			_, ok := ctl.Source()
			So(ok, ShouldBeFalse)
		})
	})
}
