// Package api declares the HTTP contracts of the board and wires its routes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/matchboard/internal/domain/model"
)

const apiTimeout = 30 * time.Second

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service.
type Dependencies interface {
	Cards(ctx context.Context) []model.Card
	Card(ctx context.Context, id int64) (model.Card, error)
	RemoveCard(ctx context.Context, id int64) error
	ToggleSelected(ctx context.Context, id int64) (model.Card, error)
	SelectPeriod(ctx context.Context, id int64, period string) (model.Card, error)
	LoadMore(ctx context.Context) []model.Card
	Swap(ctx context.Context, a, b int64) error

	DragStart(ctx context.Context, id int64) error
	DragEnter(ctx context.Context, id int64) (bool, error)
	DragLeave(ctx context.Context, id int64) (bool, error)
	DragDrop(ctx context.Context, target int64) (bool, error)
	DragEnd(ctx context.Context)

	ApplyFilter(ctx context.Context, league string) []model.Card
	Filter(ctx context.Context) string
	Leagues(ctx context.Context) []string
	Matches(ctx context.Context) []model.Match
}

// Server wires HTTP routes for the board API.
type Server struct {
	cardsHandler  *CardsHandler
	dragHandler   *DragHandler
	boardHandler  *BoardHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler

	corsOrigins []string
	ws          http.Handler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCORSOrigins sets the allowed browser origins.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithWebSocket mounts h on /ws.
func WithWebSocket(h http.Handler) ServerOption {
	return func(s *Server) { s.ws = h }
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		cardsHandler:  NewCardsHandler(deps),
		dragHandler:   NewDragHandler(deps),
		boardHandler:  NewBoardHandler(deps),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		corsOrigins:   []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with every API route. Callers may mount more
// routes on it (docs, site).
func (s *Server) Router(_ context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	if s.ws != nil {
		r.Handle("/ws", s.ws)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(apiTimeout))

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.cardsHandler.HandleList)
			r.Post("/more", s.cardsHandler.HandleLoadMore)
			r.Post("/swap", s.cardsHandler.HandleSwap)
			r.Get("/{id}", s.cardsHandler.HandleGet)
			r.Delete("/{id}", s.cardsHandler.HandleRemove)
			r.Post("/{id}/select", s.cardsHandler.HandleToggleSelected)
			r.Put("/{id}/period", s.cardsHandler.HandleSelectPeriod)
		})

		r.Route("/drag", func(r chi.Router) {
			r.Post("/start", s.dragHandler.HandleStart)
			r.Post("/enter", s.dragHandler.HandleEnter)
			r.Post("/leave", s.dragHandler.HandleLeave)
			r.Post("/drop", s.dragHandler.HandleDrop)
			r.Post("/end", s.dragHandler.HandleEnd)
		})

		r.Get("/filter", s.boardHandler.HandleGetFilter)
		r.Put("/filter", s.boardHandler.HandleSetFilter)
		r.Get("/leagues", s.boardHandler.HandleLeagues)
		r.Get("/matches", s.boardHandler.HandleMatches)
	})
	return r
}
