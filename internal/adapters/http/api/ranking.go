package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// defaultRankingLimit applies when the limit parameter is absent.
const defaultRankingLimit = 10

// RankingHandler serves the value ranking.
type RankingHandler struct {
	deps Catalog
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps Catalog) *RankingHandler {
	return &RankingHandler{deps: deps}
}

// HandleTop handles GET /api/ranking?limit=N.
func (h *RankingHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ranking"
	n := min(defaultRankingLimit, h.deps.MaxRankingLimit())
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("%s: limit must be an integer: %w", op, ErrBadRequest))
			return
		}
		n = v
	}
	entries, err := h.deps.TopRanked(r.Context(), n)
	if err != nil {
		writeErr(w, fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRank handles GET /api/ranking/{slug}.
func (h *RankingHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.RankOf(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
