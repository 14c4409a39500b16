// Package crawler walks a running site's sitemap and fetches every page.
// It is run after a deploy to warm the catalog snapshot and to report pages
// that fail to render.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/pmwiki/internal/domain/seo"
	"github.com/okian/pmwiki/pkg/logger"
)

// Default crawl settings.
const (
	DefaultTimeout       = 10 * time.Second
	defaultWorkerFactor  = 2
	maxSitemapBytes      = 10 << 20
	progressLogInterval  = time.Second
	modelPathPrefix      = "/models/"
	apiModelPathPrefix   = "/api/models/"
	apiRankingPath       = "/api/ranking"
	healthPath           = "/healthz"
	sitemapPath          = "/sitemap.xml"
	responseDrainLimitKB = 64
)

// Sentinel errors.
var (
	ErrUnhealthy   = errors.New("service is not healthy")
	ErrSitemap     = errors.New("sitemap unavailable")
	ErrPagesFailed = errors.New("some pages failed")
)

// Config holds crawl settings.
type Config struct {
	BaseURL string        // Origin of the running service
	Workers int           // Concurrent fetchers; zero uses CPU cores * 2
	Timeout time.Duration // Per-request timeout
	API     bool          // Also fetch the JSON detail of every model page
}

// Result is the outcome of one fetch.
type Result struct {
	URL      string        `json:"url"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// OK reports whether the page answered 200.
func (r Result) OK() bool {
	return r.Err == "" && r.Status == http.StatusOK
}

// Report summarizes a crawl. Failures are sorted by URL.
type Report struct {
	Pages     int           `json:"pages"`
	OK        int           `json:"ok"`
	Failed    int           `json:"failed"`
	Slowest   Result        `json:"slowest"`
	Failures  []Result      `json:"failures"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// Crawler fetches the pages of one site.
type Crawler struct {
	cfg    Config
	base   *url.URL
	client *http.Client
	logger logger.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cr *Crawler) {
		if c != nil {
			cr.client = c
		}
	}
}

// WithLogger sets the crawler logger.
func WithLogger(l logger.Logger) Option {
	return func(cr *Crawler) {
		if l != nil {
			cr.logger = l
		}
	}
}

// New validates cfg and returns a Crawler.
func New(cfg Config, opts ...Option) (*Crawler, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * defaultWorkerFactor
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Crawler{
		cfg:    cfg,
		base:   base,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run checks health, reads the sitemap and fetches every listed page.
// A report is returned even when pages failed; the error then wraps
// ErrPagesFailed.
func (c *Crawler) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	c.logger.Info(ctx, "starting crawl",
		logger.String("baseURL", c.base.String()),
		logger.Int("workers", c.cfg.Workers),
		logger.Duration("timeout", c.cfg.Timeout),
		logger.Bool("api", c.cfg.API))

	if res := c.fetch(ctx, c.resolve(healthPath)); !res.OK() {
		return nil, fmt.Errorf("%w: %s", ErrUnhealthy, describe(res))
	}

	targets, err := c.targets(ctx)
	if err != nil {
		return nil, err
	}

	results := c.fetchAll(ctx, targets)
	report := summarize(results)
	report.StartTime = start
	report.Duration = time.Since(start)

	c.logger.Info(ctx, "crawl completed",
		logger.Int("pages", report.Pages),
		logger.Int("ok", report.OK),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrPagesFailed, report.Failed, report.Pages)
	}
	return report, nil
}

// targets lists the pages to fetch: every sitemap entry moved onto the
// base origin, plus the API counterparts when enabled.
func (c *Crawler) targets(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(sitemapPath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSitemap, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSitemap, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSitemap, err)
	}
	locs, err := seo.ParseSitemap(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSitemap, err)
	}

	seen := make(map[string]struct{}, len(locs))
	var out []string
	add := func(u string) {
		if _, dup := seen[u]; !dup {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	for _, loc := range locs {
		u, err := url.Parse(loc)
		if err != nil {
			c.logger.Warn(ctx, "skipping malformed sitemap entry", logger.String("loc", loc))
			continue
		}
		path := u.Path
		if path == "" {
			path = "/"
		}
		add(c.resolve(path))
		if c.cfg.API && strings.HasPrefix(path, modelPathPrefix) {
			add(c.resolve(apiModelPathPrefix + strings.TrimPrefix(path, modelPathPrefix)))
		}
	}
	if c.cfg.API {
		add(c.resolve(apiRankingPath))
	}
	return out, nil
}

// fetchAll fetches targets on a bounded pool of workers.
func (c *Crawler) fetchAll(ctx context.Context, targets []string) []Result {
	jobs := make(chan string, c.cfg.Workers*2)
	results := make([]Result, 0, len(targets))
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		lastReport time.Time
	)

	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				res := c.fetch(ctx, target)

				mu.Lock()
				results = append(results, res)
				done := len(results)
				report := time.Since(lastReport) >= progressLogInterval
				if report {
					lastReport = time.Now()
				}
				mu.Unlock()

				if !res.OK() {
					c.logger.Warn(ctx, "page failed", logger.String("url", res.URL), logger.Int("status", res.Status), logger.String("error", res.Err))
				}
				if report {
					c.logger.Debug(ctx, "crawl progress", logger.Int("done", done), logger.Int("total", len(targets)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range targets {
			select {
			case <-ctx.Done():
				return
			case jobs <- t:
			}
		}
	}()

	wg.Wait()
	return results
}

// fetch GETs target and drains a bounded part of the body so the
// connection can be reused.
func (c *Crawler) fetch(ctx context.Context, target string) Result {
	start := time.Now()
	res := Result{URL: target}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	resp, err := c.client.Do(req)
	if err != nil {
		res.Err = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseDrainLimitKB<<10))
	_ = resp.Body.Close()
	res.Status = resp.StatusCode
	res.Duration = time.Since(start)
	return res
}

func (c *Crawler) resolve(path string) string {
	return c.base.Scheme + "://" + c.base.Host + path
}

func summarize(results []Result) *Report {
	r := &Report{Pages: len(results), Failures: []Result{}}
	for _, res := range results {
		if res.Duration > r.Slowest.Duration {
			r.Slowest = res
		}
		if res.OK() {
			r.OK++
			continue
		}
		r.Failed++
		r.Failures = append(r.Failures, res)
	}
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].URL < r.Failures[j].URL })
	return r
}

func describe(res Result) string {
	if res.Err != "" {
		return res.Err
	}
	return fmt.Sprintf("status %d", res.Status)
}
