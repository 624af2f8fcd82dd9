package api

import (
	"net/http"

	"github.com/okian/matchboard/internal/domain/model"
)

// BoardHandler serves the league filter and the match registry.
type BoardHandler struct {
	deps Dependencies
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps Dependencies) *BoardHandler {
	return &BoardHandler{deps: deps}
}

// HandleGetFilter handles GET /api/filter.
func (h *BoardHandler) HandleGetFilter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, leaguesResponse{Leagues: h.deps.Leagues(ctx), Active: h.deps.Filter(ctx)})
}

// HandleSetFilter handles PUT /api/filter and returns the cards it shows.
func (h *BoardHandler) HandleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	shown := h.deps.ApplyFilter(ctx, req.League)
	writeJSON(w, http.StatusOK, newCardsResponse(shown, h.deps.Filter(ctx)))
}

// HandleLeagues handles GET /api/leagues.
func (h *BoardHandler) HandleLeagues(w http.ResponseWriter, r *http.Request) {
	h.HandleGetFilter(w, r)
}

// HandleMatches handles GET /api/matches.
func (h *BoardHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	matches := h.deps.Matches(r.Context())
	if matches == nil {
		matches = []model.Match{}
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: matches, Count: len(matches)})
}
