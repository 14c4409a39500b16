package service

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/pkg/logger"
	"github.com/okian/pmwiki/pkg/metrics"
)

// CompareSession returns the compare set of a visitor session, creating a
// new session when id is empty, unknown or expired.
func (s *Service) CompareSession(ctx context.Context, id string) (sessionID string, set *compare.Set, created bool) {
	return s.registry.Acquire(ctx, id)
}

// AddToCompare adds a model to set. The slug must name a published model;
// display fields always come from the store, so client-supplied names are
// ignored. A full set yields compare.ErrCompareFull and leaves the
// selection unchanged.
func (s *Service) AddToCompare(ctx context.Context, set *compare.Set, item compare.Item) (compare.Snapshot, error) {
	item.Slug = strings.ToLower(strings.TrimSpace(item.Slug))
	item.ModelName = strings.TrimSpace(item.ModelName)
	item.Manufacturer = strings.TrimSpace(item.Manufacturer)
	if item.Slug == "" {
		return set.Snapshot(), fmt.Errorf("%w: slug is required", repository.ErrInvalidInput)
	}

	if !set.Has(item.Slug) {
		d, err := s.store.GetBySlug(ctx, item.Slug)
		if err != nil {
			return set.Snapshot(), wrapFetch("resolve compare item", err)
		}
		item = compare.ItemFromDevice(d)
	}

	if !set.Add(item) {
		s.log().Debug(ctx, "compare set full", logger.String("slug", item.Slug), logger.Int("max", set.Cap()))
		return set.Snapshot(), compare.ErrCompareFull
	}
	return set.Snapshot(), nil
}

// RemoveFromCompare removes slug from set.
func (s *Service) RemoveFromCompare(set *compare.Set, slug string) compare.Snapshot {
	set.Remove(strings.ToLower(strings.TrimSpace(slug)))
	return set.Snapshot()
}

// ClearCompare empties set.
func (s *Service) ClearCompare(set *compare.Set) compare.Snapshot {
	set.Clear()
	return set.Snapshot()
}

// CompareTable lays out the selected models side by side in selection
// order. Fewer than two selections produce a NeedMore table; a failed
// fetch produces a degraded empty table.
func (s *Service) CompareTable(ctx context.Context, set *compare.Set) compare.Table {
	items := set.Items()
	if len(items) < compare.MinItems {
		return compare.BuildTable(items, nil)
	}
	slugs := make([]string, len(items))
	for i, it := range items {
		slugs[i] = it.Slug
	}
	devices, err := s.store.GetBySlugs(ctx, slugs)
	if err != nil {
		metrics.RecordFetchError("compare")
		s.log().Warn(ctx, "loading compare models failed",
			logger.Strings("slugs", slugs),
			logger.Error(err),
		)
		return compare.DegradedTable()
	}
	return compare.BuildTable(items, devices)
}

// LookupCompare returns the set of an existing session without creating one.
func (s *Service) LookupCompare(id string) (*compare.Set, bool) {
	if id == "" {
		return nil, false
	}
	return s.registry.Lookup(id)
}
