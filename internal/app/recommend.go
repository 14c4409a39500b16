package service

import (
	"context"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/pkg/logger"
	"github.com/okian/pmwiki/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Recommendations are the similar-model lists on a detail page.
type Recommendations struct {
	SimilarPrice []model.Summary `json:"similar_price"`
	SimilarRange []model.Summary `json:"similar_range"`
	Lighter      []model.Summary `json:"lighter"`
}

// Recommendations runs the three similarity queries for d concurrently.
// Each list degrades to empty on failure, never contains d itself, and
// holds at most the configured recommendation limit.
func (s *Service) Recommendations(ctx context.Context, d *model.Device) Recommendations {
	var rec Recommendations
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec.SimilarPrice = s.similar(gctx, d, repository.SimilarByPrice, int64Value(d.UsedPriceA))
		return nil
	})
	g.Go(func() error {
		rec.SimilarRange = s.similar(gctx, d, repository.SimilarByRange, floatValue(d.RangeReal80kg))
		return nil
	})
	g.Go(func() error {
		rec.Lighter = s.similar(gctx, d, repository.SimilarByWeight, floatValue(d.Weight))
		return nil
	})
	_ = g.Wait() // every query degrades instead of failing

	return rec
}

func (s *Service) similar(ctx context.Context, d *model.Device, kind repository.SimilarKind, value float64) []model.Summary {
	if value <= 0 {
		return []model.Summary{}
	}
	found, err := s.store.Similar(ctx, repository.SimilarQuery{
		Kind:      kind,
		ExcludeID: d.ID,
		Value:     value,
		Limit:     repository.SimilarLimit,
	})
	if err != nil {
		metrics.RecordFetchError("similar_" + string(kind))
		s.log().Warn(ctx, "similar models query failed",
			logger.String("slug", d.Slug),
			logger.String("kind", string(kind)),
			logger.Error(err),
		)
		return []model.Summary{}
	}

	out := make([]model.Summary, 0, len(found))
	for _, m := range found {
		if m.Slug == d.Slug {
			continue
		}
		if len(out) == s.recommendationLimit {
			break
		}
		out = append(out, m)
	}
	return out
}

func int64Value(p *int64) float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

func floatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
