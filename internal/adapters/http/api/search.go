package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// SearchHandler serves catalog search.
type SearchHandler struct {
	deps Catalog
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps Catalog) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// HandleSearch handles GET /api/search?q=&limit=.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("limit must be a positive integer: %w", ErrBadRequest))
			return
		}
		limit = v
	}
	writeJSON(w, http.StatusOK, h.deps.Search(r.Context(), q.Get("q"), limit))
}
