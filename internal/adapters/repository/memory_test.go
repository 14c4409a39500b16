package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/pmwiki/internal/adapters/repository"
	"github.com/okian/pmwiki/internal/adapters/repository/storetest"
	"github.com/okian/pmwiki/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, repository.NewMemoryStore())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store preloaded with fixtures", t, func() {
		now := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
		s := repository.NewMemoryStore(
			repository.WithDevices(storetest.Devices()...),
			repository.WithPosts(storetest.Posts()...),
			repository.WithClock(func() time.Time { return now }),
		)
		defer s.Close()

		Convey("When a returned record is mutated", func() {
			d, err := s.GetBySlug(ctx, "max-g30")
			So(err, ShouldBeNil)
			d.ModelName = "changed"
			d.Pros[0] = "changed"

			Convey("Then the stored record is unchanged", func() {
				again, _ := s.GetBySlug(ctx, "max-g30")
				So(again.ModelName, ShouldEqual, "Max G30")
				So(again.Pros[0], ShouldEqual, "긴 주행거리")
			})
		})

		Convey("When a device without timestamps is upserted", func() {
			d := &model.Device{
				Slug: "niu-kqi3", Status: "published", Category: "kickboard",
				Manufacturer: "NIU", ModelName: "KQi3",
			}
			So(s.UpsertDevice(ctx, d), ShouldBeNil)

			Convey("Then an id and update time are assigned", func() {
				So(d.ID, ShouldNotBeEmpty)
				So(d.UpdatedAt, ShouldEqual, now)
			})
		})

		Convey("When nil records are upserted", func() {
			So(errors.Is(s.UpsertDevice(ctx, nil), repository.ErrInvalidInput), ShouldBeTrue)
			So(errors.Is(s.UpsertPost(ctx, nil), repository.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.ListPublished(cctx, repository.ListFilter{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestSortListing(t *testing.T) {
	Convey("Given devices with missing years and prices", t, func() {
		devices := []*model.Device{
			{Slug: "no-year"},
			{Slug: "old-cheap", ReleaseYear: model.Int(2018), UsedPriceA: model.Int64(100)},
			{Slug: "new-unpriced", ReleaseYear: model.Int(2024)},
			{Slug: "new-priced", ReleaseYear: model.Int(2024), UsedPriceA: model.Int64(500)},
		}
		repository.SortListing(devices)

		got := make([]string, len(devices))
		for i, d := range devices {
			got[i] = d.Slug
		}
		So(got, ShouldResemble, []string{"new-priced", "new-unpriced", "old-cheap", "no-year"})
	})
}
