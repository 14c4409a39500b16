package seo_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/seo"
	. "github.com/smartystreets/goconvey/convey"
)

func g30() *model.Device {
	return &model.Device{
		Slug:          "max-g30",
		Status:        model.StatusPublished,
		Category:      model.CategoryKickboard,
		Manufacturer:  "Segway-Ninebot",
		ModelName:     "Max G30",
		OriginalPrice: 799000,
		UsedPriceA:    model.Int64(350000),
		UpdatedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		ChronicDefects: []model.ChronicDefect{
			{Issue: "브레이크 소음"}, {Issue: "펑크"},
		},
	}
}

func TestProduct(t *testing.T) {
	Convey("Given a published device", t, func() {
		d := g30()

		Convey("When its product document is built", func() {
			p := seo.ProductFor(d, "https://pmwiki.kr/")
			raw, err := json.Marshal(p)
			So(err, ShouldBeNil)

			var doc map[string]any
			So(json.Unmarshal(raw, &doc), ShouldBeNil)

			Convey("Then it follows schema.org Product", func() {
				So(doc["@context"], ShouldEqual, "https://schema.org")
				So(doc["@type"], ShouldEqual, "Product")
				So(doc["name"], ShouldEqual, "Max G30")
				So(doc["description"], ShouldEqual, "Max G30 중고 적정가 및 고질병 정리")
				So(doc["category"], ShouldEqual, "전동킥보드")
				brand := doc["brand"].(map[string]any)
				So(brand["name"], ShouldEqual, "Segway-Ninebot")
				offers := doc["offers"].(map[string]any)
				So(offers["priceCurrency"], ShouldEqual, "KRW")
				So(offers["lowPrice"], ShouldEqual, float64(350000))
				So(offers["highPrice"], ShouldEqual, float64(799000))
				So(offers["url"], ShouldEqual, "https://pmwiki.kr/models/max-g30")
			})
		})

		Convey("When it has a one-line summary", func() {
			d.OneLineSummary = "입문용 추천"
			So(seo.ProductFor(d, "").Description, ShouldEqual, "입문용 추천")
		})

		Convey("When the FAQ is built", func() {
			faq := seo.FAQFor(d)
			So(len(faq.MainEntity), ShouldEqual, 2)
			So(faq.MainEntity[0].AcceptedAnswer.Text, ShouldEqual, "브레이크 소음, 펑크")
			So(faq.MainEntity[1].AcceptedAnswer.Text, ShouldEqual, seo.PendingAnswer)
		})

		Convey("When page metadata is built", func() {
			So(seo.ModelMeta(d).Title, ShouldEqual, "Max G30 중고 거래 적정가 및 고질병 정리 - PM Wiki")
			So(seo.ModelMeta(nil).Title, ShouldEqual, "모델 없음 - PM Wiki")
		})
	})
}

func TestSitemap(t *testing.T) {
	Convey("Given published and draft devices", t, func() {
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		draft := g30()
		draft.Slug = "draft-one"
		draft.Status = model.StatusDraft
		undated := g30()
		undated.Slug = "undated"
		undated.UpdatedAt = time.Time{}

		entries := seo.SitemapEntries("https://pmwiki.kr", []*model.Device{g30(), draft, undated}, now)

		Convey("Then static pages come first and drafts are skipped", func() {
			So(len(entries), ShouldEqual, 4)
			So(entries[0].Loc, ShouldEqual, "https://pmwiki.kr")
			So(entries[0].Priority, ShouldEqual, 1.0)
			So(entries[1].Loc, ShouldEqual, "https://pmwiki.kr/blog")
			So(entries[1].ChangeFreq, ShouldEqual, "daily")
			So(entries[2].Loc, ShouldEqual, "https://pmwiki.kr/models/max-g30")
			So(entries[2].ChangeFreq, ShouldEqual, "weekly")
			So(entries[2].LastMod, ShouldEqual, "2025-03-01T12:00:00Z")
			So(entries[3].LastMod, ShouldEqual, "2025-06-01T00:00:00Z")
		})

		Convey("Then the XML document is well formed", func() {
			body, err := seo.Sitemap(entries)
			So(err, ShouldBeNil)
			xml := string(body)
			So(xml, ShouldStartWith, "<?xml")
			So(xml, ShouldContainSubstring, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
			So(xml, ShouldContainSubstring, "<priority>0.8</priority>")
			So(strings.Count(xml, "<url>"), ShouldEqual, 4)

			locs, err := seo.ParseSitemap(body)
			So(err, ShouldBeNil)
			So(locs, ShouldResemble, []string{
				"https://pmwiki.kr",
				"https://pmwiki.kr/blog",
				"https://pmwiki.kr/models/max-g30",
				"https://pmwiki.kr/models/undated",
			})
		})

		Convey("Then a malformed document is rejected", func() {
			_, err := seo.ParseSitemap([]byte("<urlset><url>"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRobots(t *testing.T) {
	Convey("Given a base URL", t, func() {
		r := seo.Robots("https://pmwiki.kr/")
		So(r, ShouldContainSubstring, "Allow: /\n")
		So(r, ShouldContainSubstring, "Disallow: /private/\n")
		So(r, ShouldContainSubstring, "Sitemap: https://pmwiki.kr/sitemap.xml")
	})
}
