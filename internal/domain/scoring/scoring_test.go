package scoring_test

import (
	"math"
	"testing"

	"github.com/okian/pmwiki/internal/domain/model"
	scoring "github.com/okian/pmwiki/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValueScore(t *testing.T) {
	Convey("Given the value score formula", t, func() {
		Convey("When all inputs are present", func() {
			in := scoring.Input{OriginalPrice: 500000, BatteryCapacity: 10, MotorPowerPeak: 500}

			Convey("Then it rounds (10*36+500)/50", func() {
				score, ok := scoring.ValueScore(in)
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 17)
			})
		})

		Convey("When a realistic kickboard is scored", func() {
			// 551Wh, 700W peak, 799,000 KRW
			score, ok := scoring.ValueScore(scoring.Input{OriginalPrice: 799000, BatteryCapacity: 551, MotorPowerPeak: 700})

			Convey("Then the result matches the hand-computed value", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 257) // (19836+700)/79.9 = 257.02
			})
		})

		Convey("When the result falls exactly on .5", func() {
			// (1*36+14)/(1000000/10000) = 0.5
			score, ok := scoring.ValueScore(scoring.Input{OriginalPrice: 1000000, BatteryCapacity: 1, MotorPowerPeak: 14})

			Convey("Then it rounds up", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 1)
			})
		})

		Convey("When any input is zero", func() {
			cases := []scoring.Input{
				{OriginalPrice: 0, BatteryCapacity: 10, MotorPowerPeak: 500},
				{OriginalPrice: 500000, BatteryCapacity: 0, MotorPowerPeak: 500},
				{OriginalPrice: 500000, BatteryCapacity: 10, MotorPowerPeak: 0},
				{},
			}

			Convey("Then no score is produced", func() {
				for _, in := range cases {
					_, ok := scoring.ValueScore(in)
					So(ok, ShouldBeFalse)
				}
			})
		})

		Convey("When an input is not a number", func() {
			_, ok := scoring.ValueScore(scoring.Input{OriginalPrice: math.NaN(), BatteryCapacity: 10, MotorPowerPeak: 500})
			So(ok, ShouldBeFalse)
			_, ok = scoring.ValueScore(scoring.Input{OriginalPrice: 1e-300, BatteryCapacity: 1e300, MotorPowerPeak: 500})
			So(ok, ShouldBeFalse)
		})

		Convey("When the score is far beyond the int32 range", func() {
			// (100000*36+1000000)/(10/10000) = 4.6e9
			score, ok := scoring.ValueScore(scoring.Input{OriginalPrice: 10, BatteryCapacity: 100000, MotorPowerPeak: 1000000})

			Convey("Then the rounded value is still returned", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, 4600000000)
			})
		})

		Convey("When the score does not fit in an int", func() {
			_, ok := scoring.ValueScore(scoring.Input{OriginalPrice: 1e-10, BatteryCapacity: 1e10, MotorPowerPeak: 1})
			So(ok, ShouldBeFalse)
		})

		Convey("When inputs are negative", func() {
			score, ok := scoring.ValueScore(scoring.Input{OriginalPrice: -500000, BatteryCapacity: 10, MotorPowerPeak: 500})

			Convey("Then the arithmetic is applied as-is", func() {
				So(ok, ShouldBeTrue)
				So(score, ShouldEqual, -17)
			})
		})

		Convey("When the same input is scored twice", func() {
			in := scoring.Input{OriginalPrice: 1290000, BatteryCapacity: 720, MotorPowerPeak: 1600}
			a, _ := scoring.ValueScore(in)
			b, _ := scoring.ValueScore(in)
			So(a, ShouldEqual, b)
		})
	})
}

func TestScoreDevice(t *testing.T) {
	Convey("Given device records", t, func() {
		full := &model.Device{
			Slug:            "max-g30",
			OriginalPrice:   500000,
			BatteryCapacity: model.Float64(10),
			MotorPowerPeak:  model.Float64(500),
		}
		missing := &model.Device{Slug: "unknown-spec", OriginalPrice: 500000}

		Convey("Then a complete record is scored", func() {
			r := scoring.Score(full)
			So(r.OK, ShouldBeTrue)
			So(r.Slug, ShouldEqual, "max-g30")
			So(r.Score, ShouldEqual, 17)
			So(*scoring.ScorePtr(full), ShouldEqual, 17)
		})

		Convey("Then nil attributes mean no score", func() {
			So(scoring.Score(missing).OK, ShouldBeFalse)
			So(scoring.ScorePtr(missing), ShouldBeNil)
			So(scoring.Score(nil).OK, ShouldBeFalse)
		})
	})
}

func TestRoundHalfUp(t *testing.T) {
	Convey("Given values around the half-way point", t, func() {
		Convey("Then the largest double below 0.5 rounds down", func() {
			So(scoring.RoundHalfUp(0.49999999999999994), ShouldEqual, 0.0)
		})

		Convey("Then half-way values round toward +Inf", func() {
			So(scoring.RoundHalfUp(0.5), ShouldEqual, 1.0)
			So(scoring.RoundHalfUp(2.5), ShouldEqual, 3.0)
			So(scoring.RoundHalfUp(-2.5), ShouldEqual, -2.0)
		})

		Convey("Then other values round to the nearest integer", func() {
			So(scoring.RoundHalfUp(257.02), ShouldEqual, 257.0)
			So(scoring.RoundHalfUp(-17.2), ShouldEqual, -17.0)
			So(scoring.RoundHalfUp(4599999999.9999995), ShouldEqual, 4600000000.0)
		})
	})
}
