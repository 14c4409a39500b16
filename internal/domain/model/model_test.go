package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/pmwiki/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func validDevice() *model.Device {
	return &model.Device{
		Slug:         " Ninebot-Max-G30 ",
		Manufacturer: " Segway-Ninebot ",
		ModelName:    "Max G30",
		Category:     "KICKBOARD",
		Status:       "Published",
		Pros:         []string{"긴 주행거리", " ", ""},
		UsedChecklist: []model.UsedChecklistItem{
			{Step: 0, Part: "배터리"},
			{Step: 0, Part: "브레이크"},
		},
		ChronicDefects: []model.ChronicDefect{{Issue: ""}, {Issue: " 펑크 "}},
	}
}

func TestNormalizeDevice(t *testing.T) {
	Convey("Given an authored device record", t, func() {
		d := validDevice()

		Convey("When it is normalized", func() {
			err := model.NormalizeDevice(d)

			Convey("Then it is canonical", func() {
				So(err, ShouldBeNil)
				So(d.Slug, ShouldEqual, "ninebot-max-g30")
				So(d.Manufacturer, ShouldEqual, "Segway-Ninebot")
				So(d.Category, ShouldEqual, model.CategoryKickboard)
				So(d.Status, ShouldEqual, model.StatusPublished)
				So(d.Pros, ShouldResemble, []string{"긴 주행거리"})
				So(d.UsedChecklist[0].Step, ShouldEqual, 1)
				So(d.UsedChecklist[1].Step, ShouldEqual, 2)
				So(len(d.ChronicDefects), ShouldEqual, 1)
				So(d.ChronicDefects[0].Issue, ShouldEqual, "펑크")
				So(d.DisplayName(), ShouldEqual, "Segway-Ninebot Max G30")
			})
		})

		Convey("When the status is missing", func() {
			d.Status = ""
			So(model.NormalizeDevice(d), ShouldBeNil)

			Convey("Then it defaults to draft", func() {
				So(d.Status, ShouldEqual, model.StatusDraft)
				So(d.Published(), ShouldBeFalse)
			})
		})

		Convey("When fields are invalid", func() {
			cases := map[string]func(*model.Device){
				"slug":     func(d *model.Device) { d.Slug = "bad slug!" },
				"name":     func(d *model.Device) { d.ModelName = " " },
				"maker":    func(d *model.Device) { d.Manufacturer = "" },
				"category": func(d *model.Device) { d.Category = "hoverboard" },
				"status":   func(d *model.Device) { d.Status = "archived" },
				"price":    func(d *model.Device) { d.OriginalPrice = -1 },
			}
			for _, mutate := range cases {
				dd := validDevice()
				mutate(dd)
				err := model.NormalizeDevice(dd)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrInvalidDevice), ShouldBeTrue)
			}
			So(errors.Is(model.NormalizeDevice(nil), model.ErrInvalidDevice), ShouldBeTrue)
		})
	})
}

func TestNormalizePost(t *testing.T) {
	Convey("Given an authored blog post", t, func() {
		p := &model.BlogPost{
			Slug:          "Best-Kickboards-2025",
			Title:         " 2025 추천 킥보드 ",
			Content:       `<p onclick="x()">안녕</p><script>alert(1)</script>`,
			RelatedModels: []string{"a", " A ", "", "b"},
		}

		Convey("When it is normalized", func() {
			So(model.NormalizePost(p), ShouldBeNil)

			Convey("Then the body is sanitized and related slugs deduplicated", func() {
				So(p.Slug, ShouldEqual, "best-kickboards-2025")
				So(p.Title, ShouldEqual, "2025 추천 킥보드")
				So(p.Content, ShouldNotContainSubstring, "<script>")
				So(p.Content, ShouldNotContainSubstring, "onclick")
				So(p.Content, ShouldContainSubstring, "<p>안녕</p>")
				So(p.RelatedModels, ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When the title is missing", func() {
			p.Title = ""
			So(errors.Is(model.NormalizePost(p), model.ErrInvalidPost), ShouldBeTrue)
		})
	})
}

func TestRepairCost(t *testing.T) {
	Convey("Given repair costs authored as numbers or text", t, func() {
		var fromJSON []model.ChronicDefect
		err := json.Unmarshal([]byte(`[{"issue":"a","repair_cost":50000},{"issue":"b","repair_cost":"10~15만 원"}]`), &fromJSON)
		So(err, ShouldBeNil)
		So(string(fromJSON[0].RepairCost), ShouldEqual, "50000")
		So(string(fromJSON[1].RepairCost), ShouldEqual, "10~15만 원")

		amount, ok := fromJSON[0].RepairCost.Amount()
		So(ok, ShouldBeTrue)
		So(amount, ShouldEqual, 50000)
		_, ok = fromJSON[1].RepairCost.Amount()
		So(ok, ShouldBeFalse)

		var fromYAML []model.ChronicDefect
		err = yaml.Unmarshal([]byte("- issue: a\n  repair_cost: 70000\n- issue: b\n  repair_cost: 무상\n"), &fromYAML)
		So(err, ShouldBeNil)
		So(string(fromYAML[0].RepairCost), ShouldEqual, "70000")
		So(string(fromYAML[1].RepairCost), ShouldEqual, "무상")

		err = yaml.Unmarshal([]byte("- issue: a\n  repair_cost: [1, 2]\n"), &fromYAML)
		So(err, ShouldNotBeNil)
	})
}

func TestCategoryLabel(t *testing.T) {
	Convey("Given categories", t, func() {
		So(model.CategoryEbike.Label(), ShouldEqual, "전기자전거")
		So(model.CategoryUnicycle.Label(), ShouldEqual, "전동 외발휠")
		So(model.Category("").Label(), ShouldEqual, "—")
		So(model.Category("hover").Label(), ShouldEqual, "hover")
		So(model.Categories[0], ShouldEqual, model.CategoryKickboard)
		So(len(model.Categories), ShouldEqual, 4)
	})
}
