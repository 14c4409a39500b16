package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/pmwiki/internal/domain/compare"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// CompareHandler serves the visitor's compare selection.
type CompareHandler struct {
	deps     Comparer
	sessions *Sessions
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps Comparer, sessions *Sessions) *CompareHandler {
	return &CompareHandler{deps: deps, sessions: sessions}
}

// HandleGet handles GET /api/compare.
func (h *CompareHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	writeJSON(w, http.StatusOK, set.Snapshot())
}

// HandleAdd handles POST /api/compare with a {slug, model_name,
// manufacturer} body. A full selection answers 409 compare_full.
func (h *CompareHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_compare"
	set := h.sessions.Acquire(w, r)

	var item compare.Item
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.AddToCompare(r.Context(), set, item)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRemove handles DELETE /api/compare/{slug}.
func (h *CompareHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	writeJSON(w, http.StatusOK, h.deps.RemoveFromCompare(set, r.PathValue("slug")))
}

// HandleClear handles DELETE /api/compare.
func (h *CompareHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	writeJSON(w, http.StatusOK, h.deps.ClearCompare(set))
}

// HandleTable handles GET /api/compare/table.
func (h *CompareHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	writeJSON(w, http.StatusOK, h.deps.CompareTable(r.Context(), set))
}
