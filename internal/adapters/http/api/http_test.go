package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/okian/matchboard/internal/adapters/http/api"
	service "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stubUpstream struct {
	mu      sync.Mutex
	matches []model.Match
	stats   map[int64][]model.StatItem
}

func (s *stubUpstream) LiveMatches(context.Context) ([]model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Match(nil), s.matches...), nil
}

func (s *stubUpstream) Statistics(_ context.Context, id int64, _ model.Period) ([]model.StatItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[id], nil
}

func newBoard(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()
	up := &stubUpstream{
		matches: []model.Match{
			{ID: 1, HomeTeam: "A", AwayTeam: "B", HomeScore: 1, League: "X", HasStatistics: true},
			{ID: 2, HomeTeam: "C", AwayTeam: "D", League: "Y", HasStatistics: true},
			{ID: 3, HomeTeam: "E", AwayTeam: "F", League: "X", HasStatistics: true},
		},
		stats: map[int64][]model.StatItem{1: {{Key: "fouls", Name: "Fouls", Home: "5", Away: "6"}}},
	}
	svc := service.New(up,
		service.WithScoresInterval(time.Hour),
		service.WithStatsInterval(time.Hour),
		service.WithBatchSize(2),
		service.WithStatKeys([]string{"fouls"}),
		service.WithLogger(logger.NewNop()),
	)
	ctx := context.Background()
	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	svc.LoadMore(ctx)
	return api.NewServer(svc, svc).Router(ctx), svc
}

func do(h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out map[string]any
	_ = sonic.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestCardRoutes(t *testing.T) {
	Convey("Given a board with two rendered cards", t, func() {
		h, _ := newBoard(t)

		Convey("When listing cards", func() {
			w, body := do(h, http.MethodGet, "/api/cards", "")

			Convey("Then they come back in slot order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				So(body["count"], ShouldEqual, float64(2))
				So(body["filter"], ShouldEqual, "All")
				cards := body["cards"].([]any)
				So(cards[0].(map[string]any)["scoreboard"], ShouldEqual, "A [1] - [0] B")
			})
		})

		Convey("When fetching one card", func() {
			w, body := do(h, http.MethodGet, "/api/cards/2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["league"], ShouldEqual, "Y")

			w, body = do(h, http.MethodGet, "/api/cards/99", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(body["code"], ShouldEqual, "not_found")

			w, _ = do(h, http.MethodGet, "/api/cards/abc", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When loading more and closing a card", func() {
			w, body := do(h, http.MethodPost, "/api/cards/more", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["count"], ShouldEqual, float64(1))

			w, _ = do(h, http.MethodDelete, "/api/cards/1", "")
			So(w.Code, ShouldEqual, http.StatusNoContent)

			_, body = do(h, http.MethodGet, "/api/cards", "")
			So(body["count"], ShouldEqual, float64(2))
		})

		Convey("When selecting a period", func() {
			w, body := do(h, http.MethodPut, "/api/cards/1/period", `{"period":"1st"}`)

			Convey("Then the card is switched and patched", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["period"], ShouldEqual, "1ST")
				stats := body["stats"].([]any)
				So(stats[0].(map[string]any)["home"], ShouldEqual, "5")
			})

			Convey("And invalid periods are rejected", func() {
				w, body := do(h, http.MethodPut, "/api/cards/1/period", `{"period":"3RD"}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(body["code"], ShouldEqual, "bad_request")

				w, _ = do(h, http.MethodPut, "/api/cards/1/period", `{}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When toggling selection and swapping", func() {
			w, body := do(h, http.MethodPost, "/api/cards/1/select", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["selected"], ShouldEqual, true)

			w, body = do(h, http.MethodPost, "/api/cards/swap", `{"source":1,"target":2}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			cards := body["cards"].([]any)
			So(cards[0].(map[string]any)["id"], ShouldEqual, float64(2))
			So(cards[0].(map[string]any)["slot"], ShouldEqual, float64(0))

			w, _ = do(h, http.MethodPost, "/api/cards/swap", `{"source":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestDragAndFilterRoutes(t *testing.T) {
	Convey("Given a board with two rendered cards", t, func() {
		h, svc := newBoard(t)
		ctx := context.Background()

		Convey("When dragging card 1 onto card 2", func() {
			w, _ := do(h, http.MethodPost, "/api/drag/start", `{"id":1}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			_, body := do(h, http.MethodPost, "/api/drag/enter", `{"id":2}`)
			So(body["applied"], ShouldEqual, true)
			_, body = do(h, http.MethodPost, "/api/drag/leave", `{"id":2}`)
			So(body["applied"], ShouldEqual, true)
			_, body = do(h, http.MethodPost, "/api/drag/drop", `{"id":2}`)
			So(body["applied"], ShouldEqual, true)

			Convey("Then the cards trade places and a second drop conflicts", func() {
				So(svc.Cards(ctx)[0].MatchID, ShouldEqual, 2)
				w, body := do(h, http.MethodPost, "/api/drag/drop", `{"id":1}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(body["code"], ShouldEqual, "no_drag_source")

				w, _ = do(h, http.MethodPost, "/api/drag/end", "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When filtering by league", func() {
			w, body := do(h, http.MethodPut, "/api/filter", `{"league":"Y"}`)

			Convey("Then only its cards are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["count"], ShouldEqual, float64(1))
				So(body["filter"], ShouldEqual, "Y")

				_, body = do(h, http.MethodGet, "/api/leagues", "")
				So(body["active"], ShouldEqual, "Y")
				So(body["leagues"], ShouldResemble, []any{"All", "X", "Y"})
			})
		})

		Convey("When listing matches", func() {
			_, body := do(h, http.MethodGet, "/api/matches", "")
			So(body["count"], ShouldEqual, float64(3))
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the API router", t, func() {
		h, _ := newBoard(t)

		Convey("Then health and metrics serve the Prometheus registry", func() {
			_, _ = do(h, http.MethodGet, "/api/cards", "")
			for _, path := range []string{"/healthz", "/metrics"} {
				w, _ := do(h, http.MethodGet, path, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "matchboard_dashboard_http_requests_total")
			}
		})

		Convey("Then stats report the service state", func() {
			w, body := do(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(body["cards"], ShouldEqual, float64(2))
			So(body["started"], ShouldEqual, false)
		})

		Convey("Then CORS preflight is answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/cards", http.NoBody)
			req.Header.Set("Origin", "http://example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldNotBeEmpty)
		})

		Convey("Then unknown routes are 404", func() {
			w, _ := do(h, http.MethodGet, "/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
