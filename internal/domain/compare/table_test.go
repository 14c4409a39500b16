package compare_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/pmwiki/internal/domain/compare"
	"github.com/okian/pmwiki/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func device(slug string) *model.Device {
	return &model.Device{
		ID:              "id-" + slug,
		Slug:            slug,
		Manufacturer:    "Segway",
		ModelName:       slug,
		OriginalPrice:   500000,
		UsedPriceMin:    model.Int64(250000),
		UsedPriceMax:    model.Int64(320000),
		BatteryCapacity: model.Float64(10),
		MotorPowerPeak:  model.Float64(500),
		Weight:          model.Float64(18.7),
	}
}

func TestBuildTable(t *testing.T) {
	Convey("Given a selection of three devices", t, func() {
		items := []compare.Item{item("c"), item("a"), item("b")}

		Convey("When the store returns them in a different order", func() {
			table := compare.BuildTable(items, []*model.Device{device("a"), device("b"), device("c")})

			Convey("Then columns follow the selection order", func() {
				got := make([]string, len(table.Columns))
				for i, c := range table.Columns {
					got[i] = c.Slug
				}
				if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
					t.Errorf("column order mismatch (-want +got):\n%s", diff)
				}
				So(table.NeedMore, ShouldBeFalse)
				So(table.Degraded, ShouldBeFalse)
			})

			Convey("Then every row is rendered", func() {
				want := []compare.Row{
					{Key: "name", Label: "모델명", Values: []string{"Segway c", "Segway a", "Segway b"}},
					{Key: "op", Label: "신품가", Values: []string{"50만 원", "50만 원", "50만 원"}},
					{Key: "used_range", Label: "중고 적정 시세", Values: []string{"25만 ~ 32만 원", "25만 ~ 32만 원", "25만 ~ 32만 원"}},
					{Key: "cap", Label: "배터리 용량 (Wh)", Values: []string{"10", "10", "10"}},
					{Key: "motor", Label: "모터 출력 (W)", Values: []string{"500", "500", "500"}},
					{Key: "weight", Label: "무게 (kg)", Values: []string{"18.7", "18.7", "18.7"}},
					{Key: "range", Label: "현실 주행거리 (km)", Values: []string{"—", "—", "—"}},
					{Key: "score", Label: "퍼모위키 스코어", Values: []string{"17점", "17점", "17점"}},
				}
				if diff := cmp.Diff(want, table.Rows); diff != "" {
					t.Errorf("rows mismatch (-want +got):\n%s", diff)
				}
			})
		})

		Convey("When one selected device is missing from the store", func() {
			table := compare.BuildTable(items, []*model.Device{device("a"), device("c")})

			Convey("Then it is dropped without disturbing the rest", func() {
				So(len(table.Columns), ShouldEqual, 2)
				So(table.Columns[0].Slug, ShouldEqual, "c")
				So(table.Columns[1].Slug, ShouldEqual, "a")
				So(table.Rows[0].Values, ShouldResemble, []string{"Segway c", "Segway a"})
			})
		})

		Convey("When none are found", func() {
			table := compare.BuildTable(items, nil)
			So(table.Empty(), ShouldBeTrue)
			So(table.NeedMore, ShouldBeFalse)
		})
	})

	Convey("Given fewer than two selected devices", t, func() {
		table := compare.BuildTable([]compare.Item{item("a")}, []*model.Device{device("a")})
		So(table.NeedMore, ShouldBeTrue)
		So(table.Empty(), ShouldBeTrue)
	})

	Convey("Given a failed fetch", t, func() {
		table := compare.DegradedTable()
		So(table.Degraded, ShouldBeTrue)
		So(table.Empty(), ShouldBeTrue)
	})
}
