package compare

import (
	"github.com/okian/pmwiki/internal/domain/format"
	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/scoring"
)

// MinItems is the smallest selection that produces a comparison.
const MinItems = 2

// Column is one compared device.
type Column struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Manufacturer string `json:"manufacturer"`
	ModelName    string `json:"model_name"`
}

// Row is one attribute across all columns.
type Row struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Table is the side-by-side comparison of the selected devices.
// NeedMore is set when fewer than MinItems devices are selected; Degraded
// is set when the device fetch failed and the table is empty for that reason.
type Table struct {
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
	NeedMore bool     `json:"need_more"`
	Degraded bool     `json:"degraded,omitempty"`
}

// Empty reports whether there is nothing to render.
func (t Table) Empty() bool {
	return len(t.Columns) == 0
}

type rowSpec struct {
	key   string
	label string
	get   func(*model.Device) string
}

var rowSpecs = []rowSpec{
	{"name", "모델명", func(d *model.Device) string { return d.DisplayName() }},
	{"op", "신품가", func(d *model.Device) string { return format.Price(d.OriginalPrice) }},
	{"used_range", "중고 적정 시세", func(d *model.Device) string { return format.UsedRange(d.UsedPriceMin, d.UsedPriceMax) }},
	{"cap", "배터리 용량 (Wh)", func(d *model.Device) string { return format.Number(d.BatteryCapacity) }},
	{"motor", "모터 출력 (W)", func(d *model.Device) string { return format.Number(d.MotorPowerPeak) }},
	{"weight", "무게 (kg)", func(d *model.Device) string { return format.Number(d.Weight) }},
	{"range", "현실 주행거리 (km)", func(d *model.Device) string { return format.Number(d.RangeReal80kg) }},
	{"score", "퍼모위키 스코어", func(d *model.Device) string { return format.Score(scoring.ValueScore(scoring.FromDevice(d))) }},
}

// Order joins fetched devices to the selection order by slug. Devices not
// selected and selected slugs with no device are dropped.
func Order(slugs []string, devices []*model.Device) []*model.Device {
	bySlug := make(map[string]*model.Device, len(devices))
	for _, d := range devices {
		if d != nil {
			bySlug[d.Slug] = d
		}
	}
	out := make([]*model.Device, 0, len(slugs))
	for _, s := range slugs {
		if d, ok := bySlug[s]; ok {
			out = append(out, d)
		}
	}
	return out
}

// BuildTable lays out the devices in the order of items.
func BuildTable(items []Item, devices []*model.Device) Table {
	if len(items) < MinItems {
		return Table{NeedMore: true, Columns: []Column{}, Rows: []Row{}}
	}
	slugs := make([]string, len(items))
	for i, it := range items {
		slugs[i] = it.Slug
	}
	ordered := Order(slugs, devices)

	t := Table{Columns: make([]Column, len(ordered)), Rows: make([]Row, 0, len(rowSpecs))}
	for i, d := range ordered {
		t.Columns[i] = Column{ID: d.ID, Slug: d.Slug, Manufacturer: d.Manufacturer, ModelName: d.ModelName}
	}
	if len(ordered) == 0 {
		return t
	}
	for _, spec := range rowSpecs {
		row := Row{Key: spec.key, Label: spec.label, Values: make([]string, len(ordered))}
		for i, d := range ordered {
			row.Values[i] = spec.get(d)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DegradedTable is the empty table returned when devices could not be fetched.
func DegradedTable() Table {
	return Table{Columns: []Column{}, Rows: []Row{}, Degraded: true}
}
