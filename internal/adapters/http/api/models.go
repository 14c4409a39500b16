package api

import (
	"net/http"
	"strings"

	"github.com/okian/pmwiki/internal/domain/model"
)

// ModelsHandler serves the published listing and model details.
type ModelsHandler struct {
	deps Catalog
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(deps Catalog) *ModelsHandler {
	return &ModelsHandler{deps: deps}
}

// HandleList handles GET /api/models?category=.
func (h *ModelsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := model.Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	cards, err := h.deps.ListModels(r.Context(), category)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// HandleDetail handles GET /api/models/{slug}.
func (h *ModelsHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.deps.Model(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
