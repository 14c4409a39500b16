// Package format renders catalog values for display in Korean.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for missing values.
const Placeholder = "—"

// NoUsedPrice is shown when a used price range is unknown.
const NoUsedPrice = "정보 없음"

const manwon = 10000

var printer = message.NewPrinter(language.Korean)

// Price formats a KRW amount: zero is the placeholder, amounts of at least
// 10,000 are shown in 만 원 rounded to a whole number, smaller amounts are
// shown with digit grouping.
func Price(v int64) string {
	switch {
	case v == 0:
		return Placeholder
	case v >= manwon:
		return Manwon(v) + "만 원"
	default:
		return printer.Sprintf("%d원", v)
	}
}

// PricePtr is Price for nullable amounts.
func PricePtr(v *int64) string {
	if v == nil {
		return Placeholder
	}
	return Price(*v)
}

// Manwon returns v expressed in 만 (units of 10,000), rounded half away from zero.
func Manwon(v int64) string {
	return strconv.FormatFloat(math.Round(float64(v)/manwon), 'f', 0, 64)
}

// UsedRange formats a used-market price range as "{min}만 ~ {max}만 원".
// A missing bound or a zero minimum yields NoUsedPrice.
func UsedRange(minPrice, maxPrice *int64) string {
	if minPrice == nil || maxPrice == nil || *minPrice == 0 {
		return NoUsedPrice
	}
	return Manwon(*minPrice) + "만 ~ " + Manwon(*maxPrice) + "만 원"
}

// Number formats an optional measurement without trailing zeros.
func Number(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// NumberUnit is Number followed by a unit, or the placeholder alone.
func NumberUnit(v *float64, unit string) string {
	if v == nil {
		return Placeholder
	}
	return Number(v) + unit
}

// Score formats a value score as "N점".
func Score(score int, ok bool) string {
	if !ok {
		return Placeholder
	}
	return strconv.Itoa(score) + "점"
}

// Grouped formats an integer with digit grouping.
func Grouped(v int64) string {
	return printer.Sprintf("%d", v)
}
