package api

import "net/http"

// CardsHandler serves the card registry.
type CardsHandler struct {
	deps Dependencies
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(deps Dependencies) *CardsHandler {
	return &CardsHandler{deps: deps}
}

// HandleList handles GET /api/cards.
func (h *CardsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, newCardsResponse(h.deps.Cards(ctx), h.deps.Filter(ctx)))
}

// HandleGet handles GET /api/cards/{id}.
func (h *CardsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	card, err := h.deps.Card(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandleRemove handles DELETE /api/cards/{id}, the close button.
func (h *CardsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.deps.RemoveCard(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleSelected handles POST /api/cards/{id}/select.
func (h *CardsHandler) HandleToggleSelected(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	card, err := h.deps.ToggleSelected(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandleSelectPeriod handles PUT /api/cards/{id}/period.
func (h *CardsHandler) HandleSelectPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := cardID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req periodRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	card, err := h.deps.SelectPeriod(r.Context(), id, req.Period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandleLoadMore handles POST /api/cards/more.
func (h *CardsHandler) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCardsResponse(h.deps.LoadMore(r.Context()), ""))
}

// HandleSwap handles POST /api/cards/swap.
func (h *CardsHandler) HandleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()
	if err := h.deps.Swap(ctx, req.Source, req.Target); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCardsResponse(h.deps.Cards(ctx), h.deps.Filter(ctx)))
}
