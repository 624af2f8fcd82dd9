package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("board"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.cardSwaps.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_board_"), ShouldBeTrue)
				}
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording reconciliation metrics", func() {
			before := testutil.ToFloat64(globalManager.matchesEnded)
			So(func() {
				RecordTick("scores", "ok", 12)
				RecordTick("stats", "error", 40)
				UpdateLiveMatches(3)
				RecordNewMatches(2)
				UpdateCards(5, 4)
				RecordMatchEnded()
				RecordScoreboardWrite()
				RecordStatsPatches(7)
				RecordStatsFetchError()
				RecordPeriodSwitch("1ST")
				RecordCardSwap()
			}, ShouldNotPanic)

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.matchesEnded), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.liveMatches), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.visibleCards), ShouldEqual, 4)
			})
		})

		Convey("When recording infrastructure metrics", func() {
			So(func() {
				RecordUpstreamRequest("live", "200", 80)
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerLatency(3)
				RecordWorkerError()
				RecordHTTPRequest("cards", "GET", "200")
				RecordHTTPRequestDuration("cards", "GET", "200", 1)
				UpdateWSClients(2)
				RecordWSMessage()
				RecordWSDropped()
				RecordPublisherError("redis")
				RecordErrorByComponent("upstream", "status")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
