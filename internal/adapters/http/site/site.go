// Package site renders the server-side HTML pages of the catalog.
package site

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/pmwiki/internal/adapters/http/api"
	repository "github.com/okian/pmwiki/internal/adapters/repository"
	service "github.com/okian/pmwiki/internal/app"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/ranking"
	"github.com/okian/pmwiki/internal/domain/search"
	"github.com/okian/pmwiki/internal/domain/seo"
	"github.com/okian/pmwiki/pkg/logger"
)

// Error constants
var (
	ErrTemplate = errors.New("site template failed")
)

// homeRankingSize is the number of ranking entries on the home page.
const homeRankingSize = 5

// Dependencies are the service operations the pages use.
type Dependencies interface {
	api.Catalog
	api.Comparer
	Sitemap(ctx context.Context) ([]byte, error)
	Robots() string
	BaseURL() string
}

// Handler serves the HTML site.
type Handler struct {
	deps     Dependencies
	sessions *api.Sessions
	pages    *renderer
	logger   logger.Logger
}

// NewHandler parses the embedded templates and returns the site handler.
func NewHandler(deps Dependencies, sessions *api.Sessions, l logger.Logger) (*Handler, error) {
	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.Nop()
	}
	return &Handler{deps: deps, sessions: sessions, pages: pages, logger: l}, nil
}

// Register attaches the site routes to mux. "/" also answers unknown paths
// with the not-found page.
func (h *Handler) Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.handleHome, "page_home"))
	mux.HandleFunc("GET /models/{slug}", api.MetricsMiddleware(h.handleModel, "page_model"))
	mux.HandleFunc("GET /compare", api.MetricsMiddleware(h.handleCompare, "page_compare"))
	mux.HandleFunc("POST /compare/add", api.MetricsMiddleware(h.handleCompareAdd, "page_compare"))
	mux.HandleFunc("POST /compare/remove", api.MetricsMiddleware(h.handleCompareRemove, "page_compare"))
	mux.HandleFunc("POST /compare/clear", api.MetricsMiddleware(h.handleCompareClear, "page_compare"))
	mux.HandleFunc("GET /blog", api.MetricsMiddleware(h.handleBlog, "page_blog"))
	mux.HandleFunc("GET /blog/{slug}", api.MetricsMiddleware(h.handlePost, "page_post"))
	mux.HandleFunc("GET /sitemap.xml", api.MetricsMiddleware(h.handleSitemap, "sitemap"))
	mux.HandleFunc("GET /robots.txt", api.MetricsMiddleware(h.handleRobots, "robots"))
	mux.HandleFunc("/", api.MetricsMiddleware(h.handleNotFound, "page_not_found"))
}

// layout is the data every page template receives.
type layout struct {
	Title       string
	Description string
	Canonical   string
	Path        string
	Compare     compare.Snapshot
	JSONLD      []any
	Data        any
}

func (h *Handler) layout(r *http.Request, meta seo.Meta, data any) layout {
	l := layout{
		Title:       meta.Title,
		Description: meta.Description,
		Canonical:   strings.TrimRight(h.deps.BaseURL(), "/") + r.URL.Path,
		Path:        r.URL.Path,
		Compare:     compare.Snapshot{Items: []compare.Item{}, Max: compare.DefaultMaxItems},
		Data:        data,
	}
	if set, ok := h.sessions.Peek(r); ok {
		l.Compare = set.Snapshot()
	}
	return l
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data layout) {
	if err := h.pages.render(w, status, name, data); err != nil {
		h.logger.Error(r.Context(), "page render failed", logger.String("page", name), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type homeData struct {
	Categories []model.Category
	Category   model.Category
	Query      string
	Cards      []service.Card
	Hits       []search.Hit
	Ranking    []ranking.Entry
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	data := homeData{
		Categories: model.Categories,
		Category:   model.Category(strings.ToLower(q.Get("category"))),
		Query:      strings.TrimSpace(q.Get("q")),
	}
	if !data.Category.Valid() {
		data.Category = ""
	}

	if data.Query != "" {
		data.Hits = h.deps.Search(ctx, data.Query, 0)
	} else {
		cards, err := h.deps.ListModels(ctx, data.Category)
		if err != nil {
			h.logger.Warn(ctx, "home listing failed", logger.Error(err))
		}
		data.Cards = cards
	}
	if top, err := h.deps.TopRanked(ctx, min(homeRankingSize, h.deps.MaxRankingLimit())); err == nil {
		data.Ranking = top
	}

	meta := seo.Meta{
		Title:       seo.SiteName + " - 전동 모빌리티 중고 거래 가이드",
		Description: "전동킥보드, 전기자전거 중고 적정가와 고질병 정보",
	}
	h.render(w, r, http.StatusOK, pageHome, h.layout(r, meta, data))
}

type modelData struct {
	*service.Detail
	Selected bool
	Full     bool
}

func (h *Handler) handleModel(w http.ResponseWriter, r *http.Request) {
	detail, err := h.deps.Model(r.Context(), r.PathValue("slug"))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn(r.Context(), "model page fetch failed", logger.Error(err))
		}
		h.handleNotFound(w, r)
		return
	}
	l := h.layout(r, detail.Meta, nil)
	data := modelData{Detail: detail}
	for _, it := range l.Compare.Items {
		if it.Slug == detail.Device.Slug {
			data.Selected = true
		}
	}
	data.Full = l.Compare.Count >= l.Compare.Max && !data.Selected
	l.Data = data
	l.JSONLD = []any{detail.Product, detail.FAQ}
	h.render(w, r, http.StatusOK, pageModel, l)
}

type compareData struct {
	Table compare.Table
	Full  bool
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	data := compareData{
		Table: compare.BuildTable(nil, nil),
		Full:  r.URL.Query().Get("full") == "1",
	}
	if set, ok := h.sessions.Peek(r); ok {
		data.Table = h.deps.CompareTable(r.Context(), set)
	}
	meta := seo.Meta{Title: "모델 비교 - " + seo.SiteName, Description: "선택한 모델의 가격과 사양을 나란히 비교합니다."}
	h.render(w, r, http.StatusOK, pageCompare, h.layout(r, meta, data))
}

func (h *Handler) handleCompareAdd(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	item := compare.Item{
		Slug:         r.PostFormValue("slug"),
		ModelName:    r.PostFormValue("model_name"),
		Manufacturer: r.PostFormValue("manufacturer"),
	}
	_, err := h.deps.AddToCompare(r.Context(), set, item)
	switch {
	case errors.Is(err, compare.ErrCompareFull):
		http.Redirect(w, r, "/compare?full=1", http.StatusSeeOther)
		return
	case err != nil:
		h.logger.Debug(r.Context(), "compare add refused", logger.String("slug", item.Slug), logger.Error(err))
	}
	http.Redirect(w, r, nextPath(r), http.StatusSeeOther)
}

func (h *Handler) handleCompareRemove(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	h.deps.RemoveFromCompare(set, r.PostFormValue("slug"))
	http.Redirect(w, r, nextPath(r), http.StatusSeeOther)
}

func (h *Handler) handleCompareClear(w http.ResponseWriter, r *http.Request) {
	set := h.sessions.Acquire(w, r)
	h.deps.ClearCompare(set)
	http.Redirect(w, r, nextPath(r), http.StatusSeeOther)
}

// nextPath returns the local redirect target of a form post.
func nextPath(r *http.Request) string {
	next := r.PostFormValue("next")
	u, err := url.Parse(next)
	if next == "" || err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(next, "//") {
		return "/compare"
	}
	return u.RequestURI()
}

func (h *Handler) handleBlog(w http.ResponseWriter, r *http.Request) {
	meta := seo.Meta{Title: "블로그 - " + seo.SiteName, Description: "전동 모빌리티 구매와 관리 가이드"}
	h.render(w, r, http.StatusOK, pageBlog, h.layout(r, meta, h.deps.Posts(r.Context())))
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Post(r.Context(), r.PathValue("slug"))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn(r.Context(), "post page fetch failed", logger.Error(err))
		}
		h.handleNotFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, pagePost, h.layout(r, view.Meta, view))
}

func (h *Handler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Sitemap(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "sitemap failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(b)
}

func (h *Handler) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.deps.Robots()))
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	meta := seo.Meta{Title: "페이지를 찾을 수 없습니다 - " + seo.SiteName}
	h.render(w, r, http.StatusNotFound, pageNotFound, h.layout(r, meta, nil))
}
