// Package model contains the catalog domain models passed between layers.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Category is the device family.
type Category string

// Known categories.
const (
	CategoryKickboard Category = "kickboard"
	CategoryEbike     Category = "ebike"
	CategoryScooter   Category = "scooter"
	CategoryUnicycle  Category = "unicycle"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryKickboard, CategoryEbike, CategoryScooter, CategoryUnicycle}

var categoryLabels = map[Category]string{
	CategoryKickboard: "전동킥보드",
	CategoryEbike:     "전기자전거",
	CategoryScooter:   "스쿠터",
	CategoryUnicycle:  "전동 외발휠",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the Korean display label, or the raw value when unknown.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	if c == "" {
		return "—"
	}
	return string(c)
}

// Status is the publication state of a record.
type Status string

// Publication states.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ChronicDefect is a known recurring problem of a model.
type ChronicDefect struct {
	Issue      string     `json:"issue" yaml:"issue"`
	Frequency  string     `json:"frequency" yaml:"frequency"`
	RepairCost RepairCost `json:"repair_cost" yaml:"repair_cost"`
	Prevention string     `json:"prevention" yaml:"prevention"`
}

// RepairCost holds a repair cost that content authors enter either as a
// number (KRW) or as free text ("10~15만 원").
type RepairCost string

// UnmarshalJSON accepts both JSON numbers and strings.
func (r *RepairCost) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = RepairCost(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = RepairCost(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (r *RepairCost) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return &yaml.TypeError{Errors: []string{"repair_cost must be a scalar"}}
	}
	*r = RepairCost(strings.TrimSpace(value.Value))
	return nil
}

// Amount returns the numeric cost when the value is a plain number.
func (r RepairCost) Amount() (int64, bool) {
	n, err := strconv.ParseInt(string(r), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// UsedChecklistItem is one step of the used-purchase inspection checklist.
type UsedChecklistItem struct {
	Step         int    `json:"step" yaml:"step"`
	Part         string `json:"part" yaml:"part"`
	CheckAction  string `json:"check_action" yaml:"check_action"`
	WarningPoint string `json:"warning_point" yaml:"warning_point"`
}

// AffiliateLink points to a shop or marketplace listing.
type AffiliateLink struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Device is one catalog item (a personal-mobility device model).
// Nullable attributes are pointers; nil means "unknown".
type Device struct {
	ID             string   `json:"id" yaml:"id"`
	Status         Status   `json:"status" yaml:"status"`
	Category       Category `json:"category" yaml:"category"`
	Manufacturer   string   `json:"manufacturer" yaml:"manufacturer"`
	ModelName      string   `json:"model_name" yaml:"model_name"`
	Slug           string   `json:"slug" yaml:"slug"`
	ImageURL       string   `json:"image_url,omitempty" yaml:"image_url"`
	SubModel       string   `json:"sub_model,omitempty" yaml:"sub_model"`
	OneLineSummary string   `json:"one_line_summary,omitempty" yaml:"one_line_summary"`

	OriginalPrice      int64    `json:"original_price" yaml:"original_price"`
	UsedPriceS         *int64   `json:"used_price_s" yaml:"used_price_s"`
	UsedPriceA         *int64   `json:"used_price_a" yaml:"used_price_a"`
	UsedPriceMin       *int64   `json:"used_price_min" yaml:"used_price_min"`
	UsedPriceMax       *int64   `json:"used_price_max" yaml:"used_price_max"`
	BatteryReplaceCost *int64   `json:"battery_replace_cost" yaml:"battery_replace_cost"`
	TireSize           *float64 `json:"tire_size" yaml:"tire_size"`
	SuspensionType     string   `json:"suspension_type,omitempty" yaml:"suspension_type"`
	BatteryVoltage     *float64 `json:"battery_voltage" yaml:"battery_voltage"`
	Weight             *float64 `json:"weight" yaml:"weight"`
	RangeReal80kg      *float64 `json:"range_real_80kg" yaml:"range_real_80kg"`

	ChronicDefects []ChronicDefect     `json:"chronic_defects" yaml:"chronic_defects"`
	UsedChecklist  []UsedChecklistItem `json:"used_checklist" yaml:"used_checklist"`
	AffiliateLinks []AffiliateLink     `json:"affiliate_links" yaml:"affiliate_links"`

	MotorPowerPeak  *float64 `json:"motor_power_peak" yaml:"motor_power_peak"`
	BatteryCapacity *float64 `json:"battery_capacity" yaml:"battery_capacity"`
	RangeOfficial   *float64 `json:"range_official" yaml:"range_official"`
	MaxSpeed        *float64 `json:"max_speed" yaml:"max_speed"`
	BrakeType       string   `json:"brake_type,omitempty" yaml:"brake_type"`
	IsDiscontinued  *bool    `json:"is_discontinued" yaml:"is_discontinued"`
	ReleaseYear     *int     `json:"release_year" yaml:"release_year"`
	Dimensions      string   `json:"dimensions,omitempty" yaml:"dimensions"`

	Pros []string `json:"pros" yaml:"pros"`
	Cons []string `json:"cons" yaml:"cons"`

	ChargerSpec        string `json:"charger_spec,omitempty" yaml:"charger_spec"`
	BluetoothEnabled   *bool  `json:"bluetooth_enabled" yaml:"bluetooth_enabled"`
	BatteryCheckMethod string `json:"battery_check_method,omitempty" yaml:"battery_check_method"`

	SafetyRules []string `json:"safety_rules" yaml:"safety_rules"`

	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Published reports whether the device is visible on the site.
func (d *Device) Published() bool {
	return d.Status == StatusPublished
}

// DisplayName is "manufacturer model_name".
func (d *Device) DisplayName() string {
	return strings.TrimSpace(d.Manufacturer + " " + d.ModelName)
}

// Clone returns a copy whose slices do not alias d's.
func (d *Device) Clone() *Device {
	c := *d
	c.ChronicDefects = append([]ChronicDefect(nil), d.ChronicDefects...)
	c.UsedChecklist = append([]UsedChecklistItem(nil), d.UsedChecklist...)
	c.AffiliateLinks = append([]AffiliateLink(nil), d.AffiliateLinks...)
	c.Pros = append([]string(nil), d.Pros...)
	c.Cons = append([]string(nil), d.Cons...)
	c.SafetyRules = append([]string(nil), d.SafetyRules...)
	return &c
}

// Summary projects the fields used by recommendation widgets.
func (d *Device) Summary() Summary {
	return Summary{
		ID:            d.ID,
		Slug:          d.Slug,
		ModelName:     d.ModelName,
		Manufacturer:  d.Manufacturer,
		UsedPriceA:    d.UsedPriceA,
		RangeReal80kg: d.RangeReal80kg,
		Weight:        d.Weight,
	}
}

// Summary is the minimal projection used for lists and recommendations.
type Summary struct {
	ID            string   `json:"id"`
	Slug          string   `json:"slug"`
	ModelName     string   `json:"model_name"`
	Manufacturer  string   `json:"manufacturer"`
	UsedPriceA    *int64   `json:"used_price_a"`
	RangeReal80kg *float64 `json:"range_real_80kg"`
	Weight        *float64 `json:"weight"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
