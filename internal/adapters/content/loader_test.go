package content_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/okian/pmwiki/internal/adapters/content"
	"github.com/okian/pmwiki/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

const devicesYAML = `
devices:
  - slug: max-g30
    status: published
    category: kickboard
    manufacturer: Segway-Ninebot
    model_name: Max G30
    original_price: 799000
    used_price_a: 350000
    battery_capacity: 551
    motor_power_peak: 700
    release_year: 2019
    chronic_defects:
      - issue: 브레이크 소음
        repair_cost: 30000
      - issue: 펑크
        repair_cost: "무상"
    updated_at: 2025-02-01T09:00:00Z
---
devices:
  - slug: fiido-d11
    status: published
    category: ebike
    manufacturer: Fiido
    model_name: D11
`

const postsYAML = `
posts:
  - slug: kickboard-guide
    title: 킥보드 입문 가이드
    content: "<p>입문</p><script>x()</script>"
    related_models: [max-g30]
    created_at: 2025-01-01T00:00:00Z
`

func TestLoader(t *testing.T) {
	ctx := context.Background()

	Convey("Given content files in nested directories", t, func() {
		fsys := fstest.MapFS{
			"models/kickboards.yaml": {Data: []byte(devicesYAML)},
			"blog/2025/guide.yaml":   {Data: []byte(postsYAML)},
			"README.md":              {Data: []byte("ignored")},
		}

		Convey("When they are loaded with a recursive pattern", func() {
			b, err := content.NewLoader(fsys, "**/*.yaml").Load(ctx)

			Convey("Then every document of every file is read", func() {
				So(err, ShouldBeNil)
				So(b.Files, ShouldResemble, []string{"blog/2025/guide.yaml", "models/kickboards.yaml"})
				So(len(b.Devices), ShouldEqual, 2)
				So(len(b.Posts), ShouldEqual, 1)
				So(string(b.Devices[0].ChronicDefects[0].RepairCost), ShouldEqual, "30000")
				So(*b.Devices[0].ReleaseYear, ShouldEqual, 2019)
				So(b.Devices[0].UpdatedAt.Year(), ShouldEqual, 2025)
			})

			Convey("Then seeding writes them to the store", func() {
				store := repository.NewMemoryStore()
				res, err := content.Seed(ctx, store, b)
				So(err, ShouldBeNil)
				So(res, ShouldResemble, content.Result{Devices: 2, Posts: 1})

				d, err := store.GetBySlug(ctx, "max-g30")
				So(err, ShouldBeNil)
				So(d.ID, ShouldNotBeEmpty)

				p, err := store.GetPost(ctx, "kickboard-guide")
				So(err, ShouldBeNil)
				So(p.Content, ShouldEqual, "<p>입문</p>")
			})
		})

		Convey("When the pattern matches nothing", func() {
			_, err := content.NewLoader(fsys, "**/*.json").Load(ctx)
			So(errors.Is(err, content.ErrNoContent), ShouldBeTrue)
		})

		Convey("When a file has an unknown key", func() {
			fsys["models/typo.yaml"] = &fstest.MapFile{Data: []byte("devices:\n  - slug: a\n    prise: 1\n")}
			_, err := content.NewLoader(fsys, "**/*.yaml").Load(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "models/typo.yaml")
		})

		Convey("When a record is invalid", func() {
			b := &content.Bundle{}
			bad, err := content.NewLoader(fstest.MapFS{
				"bad.yaml": {Data: []byte("devices:\n  - slug: Not A Slug\n    model_name: x\n")},
			}, "*.yaml").Load(ctx)
			So(err, ShouldBeNil)
			b.Devices = bad.Devices

			_, err = content.Seed(ctx, repository.NewMemoryStore(), b)
			So(errors.Is(err, repository.ErrInvalidInput), ShouldBeTrue)
		})
	})
}
