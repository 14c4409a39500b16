package service

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/ranking"
	"github.com/okian/pmwiki/internal/domain/scoring"
	"github.com/okian/pmwiki/internal/domain/search"
	"github.com/okian/pmwiki/internal/domain/seo"
	"github.com/okian/pmwiki/pkg/logger"
	"github.com/okian/pmwiki/pkg/metrics"
)

// Card is a device as shown in listings.
type Card struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	ModelName      string   `json:"model_name"`
	SubModel       string   `json:"sub_model,omitempty"`
	Manufacturer   string   `json:"manufacturer"`
	Category       string   `json:"category"`
	CategoryLabel  string   `json:"category_label"`
	ImageURL       string   `json:"image_url,omitempty"`
	OneLineSummary string   `json:"one_line_summary,omitempty"`
	OriginalPrice  int64    `json:"original_price"`
	UsedPriceA     *int64   `json:"used_price_a"`
	RangeReal80kg  *float64 `json:"range_real_80kg"`
	Weight         *float64 `json:"weight"`
	ReleaseYear    *int     `json:"release_year"`
	ValueScore     *int     `json:"value_score"`
}

// CardFor projects a device into a listing card.
func CardFor(d *model.Device) Card {
	return Card{
		ID:             d.ID,
		Slug:           d.Slug,
		ModelName:      d.ModelName,
		SubModel:       d.SubModel,
		Manufacturer:   d.Manufacturer,
		Category:       string(d.Category),
		CategoryLabel:  d.Category.Label(),
		ImageURL:       d.ImageURL,
		OneLineSummary: d.OneLineSummary,
		OriginalPrice:  d.OriginalPrice,
		UsedPriceA:     d.UsedPriceA,
		RangeReal80kg:  d.RangeReal80kg,
		Weight:         d.Weight,
		ReleaseYear:    d.ReleaseYear,
		ValueScore:     scoring.ScorePtr(d),
	}
}

func cards(devices []*model.Device) []Card {
	out := make([]Card, len(devices))
	for i, d := range devices {
		out[i] = CardFor(d)
	}
	return out
}

// ListModels returns the published listing from the current snapshot,
// optionally restricted to one category.
func (s *Service) ListModels(ctx context.Context, category model.Category) ([]Card, error) {
	snap := s.ensure(ctx)
	if category == "" {
		return cards(snap.listing), nil
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", repository.ErrInvalidInput, category)
	}
	return cards(snap.byCategory[category]), nil
}

// Detail is everything the model page shows.
type Detail struct {
	Device          *model.Device   `json:"device"`
	ValueScore      *int            `json:"value_score"`
	Rank            *int            `json:"rank,omitempty"`
	Recommendations Recommendations `json:"recommendations"`
	Product         seo.Product     `json:"product"`
	FAQ             seo.FAQPage     `json:"faq"`
	Meta            seo.Meta        `json:"meta"`
}

// Model returns the detail view of a published device. It returns
// repository.ErrNotFound when the slug is unknown or unpublished.
func (s *Service) Model(ctx context.Context, slug string) (*Detail, error) {
	d, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			metrics.RecordFetchError("detail")
		}
		return nil, wrapFetch("get model", err)
	}

	detail := &Detail{
		Device:          d,
		ValueScore:      scoring.ScorePtr(d),
		Recommendations: s.Recommendations(ctx, d),
		Product:         seo.ProductFor(d, s.baseURL),
		FAQ:             seo.FAQFor(d),
		Meta:            seo.ModelMeta(d),
	}
	if e, err := s.current().board.Rank(d.Slug); err == nil {
		rank := e.Rank
		detail.Rank = &rank
	}
	return detail, nil
}

// Search runs a query over the current snapshot. limit <= 0 or above the
// configured search limit is clamped to it.
func (s *Service) Search(ctx context.Context, query string, limit int) []search.Hit {
	if limit <= 0 || limit > s.searchLimit {
		limit = s.searchLimit
	}
	hits := s.ensure(ctx).index.Search(query, limit)
	metrics.RecordSearch(len(hits))
	return hits
}

// TopRanked returns the first n entries of the value ranking.
func (s *Service) TopRanked(ctx context.Context, n int) ([]ranking.Entry, error) {
	if n < 1 || n > s.maxRankingLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", ranking.ErrInvalidLimit, s.maxRankingLimit)
	}
	return s.ensure(ctx).board.TopN(n)
}

// RankOf returns the ranking entry of one model, or ranking.ErrNotRanked.
func (s *Service) RankOf(ctx context.Context, slug string) (ranking.Entry, error) {
	return s.ensure(ctx).board.Rank(slug)
}

// MaxRankingLimit returns the largest N accepted by TopRanked.
func (s *Service) MaxRankingLimit() int {
	return s.maxRankingLimit
}

// Posts lists blog posts, newest first. A failed fetch degrades to an
// empty list.
func (s *Service) Posts(ctx context.Context) []*model.BlogPost {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		metrics.RecordFetchError("blog_list")
		s.log().Warn(ctx, "listing blog posts failed", logger.Error(err))
		return []*model.BlogPost{}
	}
	return posts
}

// PostView is a blog post with its related models.
type PostView struct {
	Post    *model.BlogPost `json:"post"`
	Related []Card          `json:"related_models"`
	Meta    seo.Meta        `json:"meta"`
}

// Post returns one blog post. Related models keep the post's order; a
// failed lookup leaves them empty.
func (s *Service) Post(ctx context.Context, slug string) (*PostView, error) {
	p, err := s.store.GetPost(ctx, slug)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			metrics.RecordFetchError("blog_post")
		}
		return nil, wrapFetch("get post", err)
	}

	view := &PostView{Post: p, Related: []Card{}, Meta: seo.PostMeta(p)}
	if len(p.RelatedModels) == 0 {
		return view, nil
	}
	devices, err := s.store.GetBySlugs(ctx, p.RelatedModels)
	if err != nil {
		metrics.RecordFetchError("blog_related")
		s.log().Warn(ctx, "loading related models failed",
			logger.String("post", p.Slug),
			logger.Error(err),
		)
		return view, nil
	}
	view.Related = cards(compare.Order(p.RelatedModels, devices))
	return view, nil
}

// Sitemap renders sitemap.xml for the current snapshot.
func (s *Service) Sitemap(ctx context.Context) ([]byte, error) {
	entries := seo.SitemapEntries(s.baseURL, s.ensure(ctx).listing, s.now())
	return seo.Sitemap(entries)
}

// Robots renders robots.txt.
func (s *Service) Robots() string {
	return seo.Robots(s.baseURL)
}
