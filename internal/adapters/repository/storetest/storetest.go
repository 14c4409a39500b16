// Package storetest provides catalog fixtures and a behavioural suite that
// every repository.Store implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/domain/model"
)

// Devices returns a small catalog: four published devices across two
// categories and one draft.
func Devices() []*model.Device {
	updated := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	return []*model.Device{
		{
			Slug: "max-g30", Status: model.StatusPublished, Category: model.CategoryKickboard,
			Manufacturer: "Segway-Ninebot", ModelName: "Max G30", OriginalPrice: 799000,
			UsedPriceA: model.Int64(350000), UsedPriceMin: model.Int64(300000), UsedPriceMax: model.Int64(420000),
			BatteryCapacity: model.Float64(551), MotorPowerPeak: model.Float64(700),
			Weight: model.Float64(18.7), RangeReal80kg: model.Float64(45), ReleaseYear: model.Int(2019),
			ChronicDefects: []model.ChronicDefect{{Issue: "브레이크 소음", RepairCost: "30000"}},
			UsedChecklist:  []model.UsedChecklistItem{{Step: 1, Part: "배터리", CheckAction: "전압 확인"}},
			Pros:           []string{"긴 주행거리"},
			UpdatedAt:      updated,
		},
		{
			Slug: "mi-pro-2", Status: model.StatusPublished, Category: model.CategoryKickboard,
			Manufacturer: "Xiaomi", ModelName: "Mi Pro 2", OriginalPrice: 599000,
			UsedPriceA: model.Int64(280000), BatteryCapacity: model.Float64(474), MotorPowerPeak: model.Float64(600),
			Weight: model.Float64(14.2), RangeReal80kg: model.Float64(38), ReleaseYear: model.Int(2020),
			UpdatedAt: updated,
		},
		{
			Slug: "e-twow-gt", Status: model.StatusPublished, Category: model.CategoryKickboard,
			Manufacturer: "E-TWOW", ModelName: "GT", OriginalPrice: 1200000,
			UsedPriceA: model.Int64(520000), Weight: model.Float64(11.5), RangeReal80kg: model.Float64(40),
			ReleaseYear: model.Int(2020), UpdatedAt: updated,
		},
		{
			Slug: "fiido-d11", Status: model.StatusPublished, Category: model.CategoryEbike,
			Manufacturer: "Fiido", ModelName: "D11", OriginalPrice: 899000,
			Weight: model.Float64(17.5), UpdatedAt: updated,
		},
		{
			Slug: "secret-proto", Status: model.StatusDraft, Category: model.CategoryKickboard,
			Manufacturer: "Proto", ModelName: "X", OriginalPrice: 100000,
			UsedPriceA: model.Int64(300000), Weight: model.Float64(5), UpdatedAt: updated,
		},
	}
}

// Posts returns two blog posts created a day apart.
func Posts() []*model.BlogPost {
	return []*model.BlogPost{
		{
			Slug: "kickboard-guide", Title: "킥보드 입문 가이드", Content: "<p>입문</p>",
			RelatedModels: []string{"max-g30", "mi-pro-2"},
			CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Slug: "winter-battery", Title: "겨울철 배터리 관리", Content: "<p>보관</p>",
			CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}
}

// Seed writes the fixtures into s.
func Seed(ctx context.Context, t *testing.T, s repository.Store) {
	t.Helper()
	for _, d := range Devices() {
		require.NoError(t, s.UpsertDevice(ctx, d))
	}
	for _, p := range Posts() {
		require.NoError(t, s.UpsertPost(ctx, p))
	}
}

func slugsOf(devices []*model.Device) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.Slug
	}
	return out
}

func summarySlugs(in []model.Summary) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Slug
	}
	return out
}

// Run exercises s, which must be empty, against the repository contract.
func Run(t *testing.T, s repository.Store) {
	ctx := context.Background()
	Seed(ctx, t, s)

	t.Run("ListPublishedOrdering", func(t *testing.T) {
		got, err := s.ListPublished(ctx, repository.ListFilter{})
		require.NoError(t, err)
		// 2020 by used price asc, then 2019, then no year.
		assert.Equal(t, []string{"mi-pro-2", "e-twow-gt", "max-g30", "fiido-d11"}, slugsOf(got))
	})

	t.Run("ListPublishedByCategory", func(t *testing.T) {
		got, err := s.ListPublished(ctx, repository.ListFilter{Category: model.CategoryEbike})
		require.NoError(t, err)
		assert.Equal(t, []string{"fiido-d11"}, slugsOf(got))

		_, err = s.ListPublished(ctx, repository.ListFilter{Category: "hoverboard"})
		assert.True(t, errors.Is(err, repository.ErrInvalidInput))
	})

	t.Run("GetBySlug", func(t *testing.T) {
		d, err := s.GetBySlug(ctx, "max-g30")
		require.NoError(t, err)
		assert.Equal(t, "Max G30", d.ModelName)
		assert.NotEmpty(t, d.ID)
		require.NotNil(t, d.UsedPriceMin)
		assert.Equal(t, int64(300000), *d.UsedPriceMin)
		require.Len(t, d.ChronicDefects, 1)
		assert.Equal(t, model.RepairCost("30000"), d.ChronicDefects[0].RepairCost)
		assert.Equal(t, "배터리", d.UsedChecklist[0].Part)
		assert.Equal(t, []string{"긴 주행거리"}, d.Pros)
		assert.True(t, d.UpdatedAt.Equal(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)))

		_, err = s.GetBySlug(ctx, "secret-proto")
		assert.True(t, errors.Is(err, repository.ErrNotFound), "drafts are hidden")
		_, err = s.GetBySlug(ctx, "nope")
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("GetBySlugs", func(t *testing.T) {
		got, err := s.GetBySlugs(ctx, []string{"fiido-d11", "secret-proto", "missing", "max-g30"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"fiido-d11", "max-g30"}, slugsOf(got))

		got, err = s.GetBySlugs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Similar", func(t *testing.T) {
		ref, err := s.GetBySlug(ctx, "max-g30")
		require.NoError(t, err)

		byPrice, err := s.Similar(ctx, repository.SimilarQuery{Kind: repository.SimilarByPrice, ExcludeID: ref.ID, Value: 350000})
		require.NoError(t, err)
		assert.Equal(t, []string{"mi-pro-2"}, summarySlugs(byPrice))

		byRange, err := s.Similar(ctx, repository.SimilarQuery{Kind: repository.SimilarByRange, ExcludeID: ref.ID, Value: 45})
		require.NoError(t, err)
		assert.Equal(t, []string{"mi-pro-2", "e-twow-gt"}, summarySlugs(byRange))

		byWeight, err := s.Similar(ctx, repository.SimilarQuery{Kind: repository.SimilarByWeight, ExcludeID: ref.ID, Value: 18.7})
		require.NoError(t, err)
		assert.Equal(t, []string{"e-twow-gt", "mi-pro-2", "fiido-d11"}, summarySlugs(byWeight))

		limited, err := s.Similar(ctx, repository.SimilarQuery{Kind: repository.SimilarByWeight, ExcludeID: ref.ID, Value: 18.7, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		none, err := s.Similar(ctx, repository.SimilarQuery{Kind: repository.SimilarByPrice, Value: 0})
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = s.Similar(ctx, repository.SimilarQuery{Kind: "color", Value: 1})
		assert.True(t, errors.Is(err, repository.ErrInvalidInput))
	})

	t.Run("UpsertReplacesBySlug", func(t *testing.T) {
		before, err := s.GetBySlug(ctx, "fiido-d11")
		require.NoError(t, err)

		update := &model.Device{
			Slug: "fiido-d11", Status: model.StatusPublished, Category: model.CategoryEbike,
			Manufacturer: "Fiido", ModelName: "D11 2024", OriginalPrice: 950000,
		}
		require.NoError(t, s.UpsertDevice(ctx, update))

		after, err := s.GetBySlug(ctx, "fiido-d11")
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, "D11 2024", after.ModelName)
		assert.Equal(t, int64(950000), after.OriginalPrice)

		err = s.UpsertDevice(ctx, &model.Device{Slug: "Bad Slug"})
		assert.True(t, errors.Is(err, repository.ErrInvalidInput))
	})

	t.Run("Posts", func(t *testing.T) {
		posts, err := s.ListPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "winter-battery", posts[0].Slug)
		assert.Equal(t, "kickboard-guide", posts[1].Slug)

		p, err := s.GetPost(ctx, "kickboard-guide")
		require.NoError(t, err)
		assert.Equal(t, []string{"max-g30", "mi-pro-2"}, p.RelatedModels)
		assert.Equal(t, "<p>입문</p>", p.Content)

		_, err = s.GetPost(ctx, "missing")
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})
}
