package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/matchboard/internal/adapters/upstream"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/internal/simulator"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClientAgainstFeed(t *testing.T) {
	Convey("Given a client pointed at the simulated feed", t, func() {
		feed := simulator.New()
		srv := httptest.NewServer(feed.Handler())
		defer srv.Close()
		client := upstream.NewClient(srv.URL+"/", upstream.WithTimeout(time.Second))
		ctx := context.Background()

		Convey("When the feed has live matches", func() {
			feed.SetMatches(
				model.Match{ID: 1, HomeTeam: "A", AwayTeam: "B", HomeScore: 1, League: "X", HasStatistics: true, HasHeatMap: true},
				model.Match{ID: 2, HomeTeam: "C", AwayTeam: "D", AwayScore: 2, League: "Y"},
			)

			matches, err := client.LiveMatches(ctx)

			Convey("Then they are decoded in order", func() {
				So(err, ShouldBeNil)
				So(matches, ShouldHaveLength, 2)
				So(matches[0].ID, ShouldEqual, 1)
				So(matches[0].HomeTeam, ShouldEqual, "A")
				So(matches[0].HomeScore, ShouldEqual, 1)
				So(matches[0].League, ShouldEqual, "X")
				So(matches[0].HasStatistics, ShouldBeTrue)
				So(matches[0].HasHeatMap, ShouldBeTrue)
				So(matches[1].AwayScore, ShouldEqual, 2)
			})
		})

		Convey("When the live list is empty", func() {
			matches, err := client.LiveMatches(ctx)
			So(err, ShouldBeNil)
			So(matches, ShouldBeEmpty)
		})

		Convey("When the live endpoint fails", func() {
			feed.FailWith("live", http.StatusBadGateway)
			_, err := client.LiveMatches(ctx)

			Convey("Then the error is marked as a status failure", func() {
				So(errors.Is(err, upstream.ErrUpstreamStatus), ShouldBeTrue)
			})
		})

		Convey("When fetching statistics", func() {
			feed.SetStatistics(1, model.PeriodAll,
				model.StatItem{Key: "fouls", Name: "Fouls", Home: "3", Away: "4"},
				model.StatItem{Key: "cornerKicks", Name: "Corner kicks", Home: "1", Away: "0"},
				model.StatItem{Key: "redCards", Name: "Red cards", Home: "0", Away: "1"},
			)
			feed.SetStatistics(1, model.Period1st, model.StatItem{Key: "fouls", Home: "1", Away: "2"})

			Convey("Then all groups of the period are flattened in order", func() {
				items, err := client.Statistics(ctx, 1, model.PeriodAll)
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 3)
				So(items[0].Key, ShouldEqual, "fouls")
				So(items[2], ShouldResemble, model.StatItem{Key: "redCards", Name: "Red cards", Home: "0", Away: "1"})
			})

			Convey("Then only the requested period is returned", func() {
				items, err := client.Statistics(ctx, 1, model.Period1st)
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 1)
				So(items[0].Home, ShouldEqual, "1")
			})

			Convey("Then a missing period yields nothing", func() {
				items, err := client.Statistics(ctx, 1, model.Period2nd)
				So(err, ShouldBeNil)
				So(items, ShouldBeEmpty)
			})

			Convey("Then an unknown match fails as a stats fetch failure", func() {
				_, err := client.Statistics(ctx, 99, model.PeriodAll)
				So(errors.Is(err, model.ErrStatsFetchFailed), ShouldBeTrue)
				So(errors.Is(err, upstream.ErrUpstreamStatus), ShouldBeTrue)
			})
		})
	})
}

func TestClientDetails(t *testing.T) {
	Convey("Given a hand-written upstream", t, func() {
		var hits atomic.Int32
		var gotKey, gotHost atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			gotKey.Store(r.Header.Get("x-rapidapi-key"))
			gotHost.Store(r.Header.Get("x-rapidapi-host"))
			switch r.URL.Path {
			case "/sport/football/events/live":
				_, _ = w.Write([]byte(`{"events":[{"id":5,"homeTeam":{"name":"Home United","shortName":""},"awayTeam":{"name":"Away City","shortName":"Away"},"homeScore":{"current":3},"awayScore":{},"tournament":{"name":"Cup"}}]}`))
			case "/slow/sport/football/events/live":
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{"events":[]}`))
			default:
				_, _ = w.Write([]byte(`{not json`))
			}
		}))
		defer srv.Close()
		ctx := context.Background()

		Convey("When the short name is empty", func() {
			client := upstream.NewClient(srv.URL, upstream.WithRelay("relay.example.com", "k-123"))
			matches, err := client.LiveMatches(ctx)

			Convey("Then the full name is used and relay headers are sent", func() {
				So(err, ShouldBeNil)
				So(matches[0].HomeTeam, ShouldEqual, "Home United")
				So(matches[0].AwayTeam, ShouldEqual, "Away")
				So(matches[0].AwayScore, ShouldEqual, 0)
				So(gotKey.Load(), ShouldEqual, "k-123")
				So(gotHost.Load(), ShouldEqual, "relay.example.com")
			})
		})

		Convey("When the payload is not JSON", func() {
			client := upstream.NewClient(srv.URL)
			_, err := client.Statistics(ctx, 1, model.PeriodAll)

			Convey("Then it is a decode failure", func() {
				So(errors.Is(err, upstream.ErrDecode), ShouldBeTrue)
				So(errors.Is(err, model.ErrStatsFetchFailed), ShouldBeTrue)
			})
		})

		Convey("When the upstream is slower than the timeout", func() {
			client := upstream.NewClient(srv.URL+"/slow", upstream.WithTimeout(20*time.Millisecond))
			_, err := client.LiveMatches(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("When identical requests run concurrently", func() {
			client := upstream.NewClient(srv.URL + "/slow")
			done := make(chan error, 4)
			for i := 0; i < 4; i++ {
				go func() {
					_, err := client.LiveMatches(ctx)
					done <- err
				}()
			}
			for i := 0; i < 4; i++ {
				So(<-done, ShouldBeNil)
			}

			Convey("Then fewer round trips than callers are made", func() {
				So(hits.Load(), ShouldBeLessThan, 4)
			})
		})

		Convey("When the first caller of a shared request gives up", func() {
			client := upstream.NewClient(srv.URL + "/slow")
			leaderCtx, cancel := context.WithCancel(ctx)
			leader := make(chan error, 1)
			go func() {
				_, err := client.LiveMatches(leaderCtx)
				leader <- err
			}()
			time.Sleep(50 * time.Millisecond)

			follower := make(chan error, 1)
			go func() {
				_, err := client.LiveMatches(ctx)
				follower <- err
			}()
			time.Sleep(20 * time.Millisecond)
			cancel()

			Convey("Then only that caller fails", func() {
				So(errors.Is(<-leader, context.Canceled), ShouldBeTrue)
				So(<-follower, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 1)
			})
		})
	})
}
