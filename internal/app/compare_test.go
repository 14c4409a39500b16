package service_test

import (
	"context"
	"errors"
	"testing"

	repository "github.com/okian/pmwiki/internal/adapters/repository"
	service "github.com/okian/pmwiki/internal/app"
	"github.com/okian/pmwiki/internal/domain/compare"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_CompareSession(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		ctx := context.Background()

		Convey("When a visitor arrives without a session", func() {
			id, set, created := svc.CompareSession(ctx, "")

			Convey("Then a new session is issued", func() {
				So(created, ShouldBeTrue)
				So(id, ShouldNotBeEmpty)
				So(set.Len(), ShouldEqual, 0)
			})

			Convey("And presenting it again returns the same set", func() {
				again, same, created := svc.CompareSession(ctx, id)
				So(created, ShouldBeFalse)
				So(again, ShouldEqual, id)
				So(same, ShouldEqual, set)
			})
		})
	})
}

func TestService_AddToCompare(t *testing.T) {
	Convey("Given an empty compare set", t, func() {
		svc := service.New(service.WithStore(seededStore()))
		ctx := context.Background()
		_, set, _ := svc.CompareSession(ctx, "")

		Convey("When adding by slug only", func() {
			snap, err := svc.AddToCompare(ctx, set, compare.Item{Slug: " MAX-G30 "})

			Convey("Then display fields are filled from the catalog", func() {
				So(err, ShouldBeNil)
				So(snap.Count, ShouldEqual, 1)
				So(snap.Items[0], ShouldResemble, compare.Item{Slug: "max-g30", ModelName: "Max G30", Manufacturer: "Segway-Ninebot"})
			})
		})

		Convey("When adding an unknown slug without display fields", func() {
			_, err := svc.AddToCompare(ctx, set, compare.Item{Slug: "nope"})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(set.Len(), ShouldEqual, 0)
		})

		Convey("When an unknown slug comes with display fields", func() {
			_, err := svc.AddToCompare(ctx, set, compare.Item{Slug: "no-such-model", ModelName: "Ghost", Manufacturer: "Nobody"})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(set.Len(), ShouldEqual, 0)
		})

		Convey("When a known slug comes with different display fields", func() {
			snap, err := svc.AddToCompare(ctx, set, compare.Item{Slug: "max-g30", ModelName: "Other", Manufacturer: "Someone"})

			Convey("Then the catalog names are kept", func() {
				So(err, ShouldBeNil)
				So(snap.Items[0], ShouldResemble, compare.Item{Slug: "max-g30", ModelName: "Max G30", Manufacturer: "Segway-Ninebot"})
			})
		})

		Convey("When the slug is blank", func() {
			_, err := svc.AddToCompare(ctx, set, compare.Item{Slug: "  "})
			So(errors.Is(err, repository.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the set is full", func() {
			for _, slug := range []string{"max-g30", "mi-pro-2", "e-twow-gt"} {
				_, err := svc.AddToCompare(ctx, set, compare.Item{Slug: slug})
				So(err, ShouldBeNil)
			}
			snap, err := svc.AddToCompare(ctx, set, compare.Item{Slug: "fiido-d11"})

			Convey("Then the add is rejected and the selection unchanged", func() {
				So(errors.Is(err, compare.ErrCompareFull), ShouldBeTrue)
				So(snap.Slugs(), ShouldResemble, []string{"max-g30", "mi-pro-2", "e-twow-gt"})
			})

			Convey("And re-adding a selected model still succeeds", func() {
				_, err := svc.AddToCompare(ctx, set, compare.Item{Slug: "mi-pro-2"})
				So(err, ShouldBeNil)
			})
		})

		Convey("When removing and clearing", func() {
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "max-g30"})
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "mi-pro-2"})

			snap := svc.RemoveFromCompare(set, "MAX-G30")
			So(snap.Slugs(), ShouldResemble, []string{"mi-pro-2"})

			snap = svc.ClearCompare(set)
			So(snap.Count, ShouldEqual, 0)
		})
	})
}

func TestService_CompareTable(t *testing.T) {
	Convey("Given a compare session", t, func() {
		store := &flakyStore{MemoryStore: seededStore()}
		svc := service.New(service.WithStore(store))
		ctx := context.Background()
		_, set, _ := svc.CompareSession(ctx, "")

		Convey("When fewer than two models are selected", func() {
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "max-g30"})
			table := svc.CompareTable(ctx, set)
			So(table.NeedMore, ShouldBeTrue)
			So(table.Empty(), ShouldBeTrue)
		})

		Convey("When two models are selected", func() {
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "mi-pro-2"})
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "max-g30"})
			table := svc.CompareTable(ctx, set)

			Convey("Then columns follow the selection order", func() {
				So(table.NeedMore, ShouldBeFalse)
				So(len(table.Columns), ShouldEqual, 2)
				So(table.Columns[0].Slug, ShouldEqual, "mi-pro-2")
				So(table.Columns[1].Slug, ShouldEqual, "max-g30")
				last := table.Rows[len(table.Rows)-1]
				So(last.Key, ShouldEqual, "score")
				So(last.Values, ShouldResemble, []string{"295점", "257점"})
			})
		})

		Convey("When the catalog cannot be reached", func() {
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "mi-pro-2"})
			_, _ = svc.AddToCompare(ctx, set, compare.Item{Slug: "max-g30"})
			store.failSlugs = true
			table := svc.CompareTable(ctx, set)

			Convey("Then the table degrades to empty", func() {
				So(table.Degraded, ShouldBeTrue)
				So(table.Empty(), ShouldBeTrue)
			})
		})
	})
}
