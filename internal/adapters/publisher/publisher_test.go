package publisher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/matchboard/internal/adapters/publisher"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

type captured struct {
	mu     sync.Mutex
	events []model.CardEvent
	err    error
}

func (c *captured) Publish(_ context.Context, ev model.CardEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return c.err
}

func TestMulti(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fan-out with two sinks", t, func() {
		a, b := &captured{}, &captured{}
		m := publisher.NewMulti(publisher.Sink{Name: "a", Publisher: a}, publisher.Sink{Name: "nil"})
		m.Add("b", b)

		Convey("Then nil sinks are skipped", func() {
			So(m.Sinks(), ShouldResemble, []string{"a", "b"})
		})

		Convey("When publishing", func() {
			err := m.Publish(ctx, model.NewCardEvent(model.EventUpdated, model.Card{MatchID: 1}))

			Convey("Then both sinks receive the event", func() {
				So(err, ShouldBeNil)
				So(a.events, ShouldHaveLength, 1)
				So(b.events, ShouldHaveLength, 1)
				So(b.events[0].MatchID, ShouldEqual, 1)
			})
		})

		Convey("When the first sink fails", func() {
			a.err = errors.New("down")
			err := m.Publish(ctx, model.CardEvent{Type: model.EventRemoved, MatchID: 2})

			Convey("Then the other still receives it and the error names the sink", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "sink a")
				So(b.events, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Nop never fails", t, func() {
		So(publisher.Nop{}.Publish(ctx, model.CardEvent{}), ShouldBeNil)
	})
}

func TestStreamPublisher(t *testing.T) {
	Convey("Given a malformed redis url", t, func() {
		_, err := publisher.NewRedisClient("not-a-url://")
		So(err, ShouldNotBeNil)
	})

	Convey("Given a stream publisher without a reachable server", t, func() {
		client := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		p := publisher.NewStreamPublisher(client, "matchboard:cards")
		defer func() { _ = p.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Convey("Then publishing reports the failure", func() {
			err := p.Publish(ctx, model.CardEvent{Type: model.EventUpdated, MatchID: 3})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "xadd matchboard:cards")
			So(p.Ping(ctx), ShouldNotBeNil)
		})
	})
}
