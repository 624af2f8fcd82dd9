package api

import (
	"context"
	"net/http"
)

// DragHandler drives the drag/drop controller.
type DragHandler struct {
	deps Dependencies
}

// NewDragHandler creates a new drag handler.
func NewDragHandler(deps Dependencies) *DragHandler {
	return &DragHandler{deps: deps}
}

// HandleStart handles POST /api/drag/start.
func (h *DragHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, func(ctx context.Context, id int64) (bool, error) {
		if err := h.deps.DragStart(ctx, id); err != nil {
			return false, err
		}
		return true, nil
	})
}

// HandleEnter handles POST /api/drag/enter.
func (h *DragHandler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.DragEnter)
}

// HandleLeave handles POST /api/drag/leave.
func (h *DragHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.DragLeave)
}

// HandleDrop handles POST /api/drag/drop.
func (h *DragHandler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.DragDrop)
}

// HandleEnd handles POST /api/drag/end.
func (h *DragHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	h.deps.DragEnd(r.Context())
	writeJSON(w, http.StatusOK, dragResponse{Applied: true})
}

func (h *DragHandler) handle(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) (bool, error)) {
	var req dragRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ok, err := fn(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dragResponse{Applied: ok})
}
