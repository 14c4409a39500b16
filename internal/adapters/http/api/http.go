// Package api serves the catalog and compare JSON API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/okian/pmwiki/internal/app"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/ranking"
	"github.com/okian/pmwiki/internal/domain/search"
	"github.com/okian/pmwiki/pkg/logger"
)

// Catalog is the read side of the service used by the handlers.
type Catalog interface {
	ListModels(ctx context.Context, category model.Category) ([]service.Card, error)
	Model(ctx context.Context, slug string) (*service.Detail, error)
	Search(ctx context.Context, query string, limit int) []search.Hit
	TopRanked(ctx context.Context, n int) ([]ranking.Entry, error)
	RankOf(ctx context.Context, slug string) (ranking.Entry, error)
	MaxRankingLimit() int
	Posts(ctx context.Context) []*model.BlogPost
	Post(ctx context.Context, slug string) (*service.PostView, error)
}

// Comparer manages per-visitor compare sets.
type Comparer interface {
	CompareSession(ctx context.Context, id string) (sessionID string, set *compare.Set, created bool)
	LookupCompare(id string) (*compare.Set, bool)
	AddToCompare(ctx context.Context, set *compare.Set, item compare.Item) (compare.Snapshot, error)
	RemoveFromCompare(set *compare.Set, slug string) compare.Snapshot
	ClearCompare(set *compare.Set) compare.Snapshot
	CompareTable(ctx context.Context, set *compare.Set) compare.Table
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Catalog
	Comparer
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	modelsHandler  *ModelsHandler
	rankingHandler *RankingHandler
	searchHandler  *SearchHandler
	blogHandler    *BlogHandler
	compareHandler *CompareHandler
	watchHandler   *WatchHandler
}

// Option configures a Server.
type Option func(*options)

type options struct {
	logger       logger.Logger
	cookieMaxAge time.Duration
	secureCookie bool
	writeTimeout time.Duration
	pingInterval time.Duration
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCookieMaxAge sets the lifetime of the compare session cookie.
func WithCookieMaxAge(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cookieMaxAge = d
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(o *options) { o.secureCookie = secure }
}

// WithPingInterval sets how often watch streams are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pingInterval = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := options{
		logger:       logger.Nop(),
		cookieMaxAge: compare.DefaultSessionTTL,
		writeTimeout: 10 * time.Second,
		pingInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	sessions := NewSessions(deps, o.cookieMaxAge, o.secureCookie)
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		modelsHandler:  NewModelsHandler(deps),
		rankingHandler: NewRankingHandler(deps),
		searchHandler:  NewSearchHandler(deps),
		blogHandler:    NewBlogHandler(deps),
		compareHandler: NewCompareHandler(deps, sessions),
		watchHandler:   NewWatchHandler(sessions, o.logger, o.writeTimeout, o.pingInterval),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/models", MetricsMiddleware(s.modelsHandler.HandleList, "models"))
	mux.HandleFunc("GET /api/models/{slug}", MetricsMiddleware(s.modelsHandler.HandleDetail, "model"))
	mux.HandleFunc("GET /api/ranking", MetricsMiddleware(s.rankingHandler.HandleTop, "ranking"))
	mux.HandleFunc("GET /api/ranking/{slug}", MetricsMiddleware(s.rankingHandler.HandleRank, "rank"))
	mux.HandleFunc("GET /api/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	mux.HandleFunc("GET /api/blog", MetricsMiddleware(s.blogHandler.HandleList, "blog"))
	mux.HandleFunc("GET /api/blog/{slug}", MetricsMiddleware(s.blogHandler.HandlePost, "blog_post"))

	mux.HandleFunc("GET /api/compare", MetricsMiddleware(s.compareHandler.HandleGet, "compare"))
	mux.HandleFunc("POST /api/compare", MetricsMiddleware(s.compareHandler.HandleAdd, "compare"))
	mux.HandleFunc("DELETE /api/compare", MetricsMiddleware(s.compareHandler.HandleClear, "compare"))
	mux.HandleFunc("DELETE /api/compare/{slug}", MetricsMiddleware(s.compareHandler.HandleRemove, "compare_item"))
	mux.HandleFunc("GET /api/compare/table", MetricsMiddleware(s.compareHandler.HandleTable, "compare_table"))
	mux.HandleFunc("GET /api/compare/watch", MetricsMiddleware(s.watchHandler.HandleWatch, "compare_watch"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErr writes err with the status its kind maps to.
func writeErr(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
