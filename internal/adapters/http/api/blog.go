package api

import (
	"net/http"
)

// BlogHandler serves blog posts.
type BlogHandler struct {
	deps Catalog
}

// NewBlogHandler creates a new blog handler.
func NewBlogHandler(deps Catalog) *BlogHandler {
	return &BlogHandler{deps: deps}
}

// HandleList handles GET /api/blog.
func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Posts(r.Context()))
}

// HandlePost handles GET /api/blog/{slug}.
func (h *BlogHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Post(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
