// Package scoring computes the "value score" of a device: energy and power
// delivered per unit of original price.
package scoring

import (
	"math"

	"github.com/okian/pmwiki/internal/domain/model"
)

const (
	// NominalVoltage converts battery capacity into a comparable energy term.
	NominalVoltage = 36
	// PriceUnit is the price divisor (one "만 원").
	PriceUnit = 10000
)

// Input carries the three attributes the score depends on. Zero means
// missing; nil pointers on a Device map to zero.
type Input struct {
	OriginalPrice   float64
	BatteryCapacity float64
	MotorPowerPeak  float64
}

// Result is a computed score. OK is false when no score is available.
type Result struct {
	Slug  string `json:"slug"`
	Score int    `json:"score"`
	OK    bool   `json:"ok"`
}

// FromDevice extracts the scoring input from a device record.
func FromDevice(d *model.Device) Input {
	if d == nil {
		return Input{}
	}
	in := Input{OriginalPrice: float64(d.OriginalPrice)}
	if d.BatteryCapacity != nil {
		in.BatteryCapacity = *d.BatteryCapacity
	}
	if d.MotorPowerPeak != nil {
		in.MotorPowerPeak = *d.MotorPowerPeak
	}
	return in
}

// ValueScore returns round((capacity*36 + power) / (price/10000)).
// ok is false when any input is zero, the denominator is zero, or the
// result is not a finite number that fits in an int. Negative inputs are
// not rejected.
func ValueScore(in Input) (score int, ok bool) {
	if in.OriginalPrice == 0 || in.BatteryCapacity == 0 || in.MotorPowerPeak == 0 {
		return 0, false
	}
	if math.IsNaN(in.OriginalPrice) || math.IsNaN(in.BatteryCapacity) || math.IsNaN(in.MotorPowerPeak) {
		return 0, false
	}
	denominator := in.OriginalPrice / PriceUnit
	if denominator == 0 {
		return 0, false
	}
	v := (in.BatteryCapacity*NominalVoltage + in.MotorPowerPeak) / denominator
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	r := roundHalfUp(v)
	if r >= -float64(math.MinInt) || r < float64(math.MinInt) {
		return 0, false
	}
	return int(r), true
}

// roundHalfUp rounds to the nearest integer, half-way values toward +Inf.
// Adding 0.5 before flooring would round 0.49999999999999994 up to 1.
func roundHalfUp(v float64) float64 {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return f
}

// Score scores a device and tags the result with its slug.
func Score(d *model.Device) Result {
	if d == nil {
		return Result{}
	}
	s, ok := ValueScore(FromDevice(d))
	return Result{Slug: d.Slug, Score: s, OK: ok}
}

// ScorePtr is Score for templates and JSON: nil when unavailable.
func ScorePtr(d *model.Device) *int {
	r := Score(d)
	if !r.OK {
		return nil
	}
	return &r.Score
}
