package service_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/adapters/upstream"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/internal/simulator"
	"github.com/okian/matchboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestServiceAgainstSimulatedFeed(t *testing.T) {
	Convey("Given the service polling the simulated feed", t, func() {
		feed := simulator.New()
		feed.SetMatches(
			model.Match{ID: 1, HomeTeam: "A", AwayTeam: "B", HomeScore: 1, League: "X", HasStatistics: true},
			model.Match{ID: 2, HomeTeam: "C", AwayTeam: "D", League: "Y", HasStatistics: true},
		)
		feed.SetStatistics(1, model.PeriodAll, model.StatItem{Key: "fouls", Name: "Fouls", Home: "3", Away: "4"})
		feed.SetStatistics(2, model.PeriodAll, model.StatItem{Key: "fouls", Name: "Fouls", Home: "0", Away: "1"})
		srv := httptest.NewServer(feed.Handler())
		defer srv.Close()

		svc := service.New(upstream.NewClient(srv.URL, upstream.WithTimeout(time.Second)),
			service.WithScoresInterval(20*time.Millisecond),
			service.WithStatsInterval(20*time.Millisecond),
			service.WithWorkerCount(2),
			service.WithLogger(logger.NewNop()),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		Convey("Then both cards are rendered and their statistics patched", func() {
			So(svc.Cards(ctx), ShouldHaveLength, 2)
			So(waitFor(func() bool {
				c, _ := svc.Card(ctx, 2)
				return c.Stats[6].Away == "1"
			}), ShouldBeTrue)
		})

		Convey("When one match ends upstream", func() {
			feed.SetMatches(model.Match{ID: 2, HomeTeam: "C", AwayTeam: "D", AwayScore: 1, League: "Y", HasStatistics: true})

			Convey("Then its card is marked ENDED and the other follows the score", func() {
				So(waitFor(func() bool {
					a, _ := svc.Card(ctx, 1)
					b, _ := svc.Card(ctx, 2)
					return a.Ended && b.Scoreboard == "C [0] - [1] D"
				}), ShouldBeTrue)
				a, _ := svc.Card(ctx, 1)
				So(a.Scoreboard, ShouldEqual, "A [1] - [0] B [ENDED]")
			})
		})
	})
}
