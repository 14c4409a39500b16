package model

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Sentinel errors for ingestion validation.
var (
	ErrInvalidDevice = errors.New("invalid device")
	ErrInvalidPost   = errors.New("invalid blog post")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a URL-safe slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// NormalizeDevice brings an authored record into the canonical shape used by
// every reader: trimmed strings, lower-case enums, draft by default,
// numbered and ordered checklist steps, no blank list entries.
func NormalizeDevice(d *Device) error {
	if d == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidDevice)
	}
	d.Slug = strings.ToLower(strings.TrimSpace(d.Slug))
	d.Manufacturer = strings.TrimSpace(d.Manufacturer)
	d.ModelName = strings.TrimSpace(d.ModelName)
	d.SubModel = strings.TrimSpace(d.SubModel)
	d.OneLineSummary = strings.TrimSpace(d.OneLineSummary)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.SuspensionType = strings.TrimSpace(d.SuspensionType)
	d.BrakeType = strings.TrimSpace(d.BrakeType)
	d.Dimensions = strings.TrimSpace(d.Dimensions)
	d.ChargerSpec = strings.TrimSpace(d.ChargerSpec)
	d.BatteryCheckMethod = strings.TrimSpace(d.BatteryCheckMethod)
	d.Category = Category(strings.ToLower(strings.TrimSpace(string(d.Category))))
	d.Status = Status(strings.ToLower(strings.TrimSpace(string(d.Status))))

	switch {
	case !ValidSlug(d.Slug):
		return fmt.Errorf("%w: slug %q is not URL-safe", ErrInvalidDevice, d.Slug)
	case d.ModelName == "":
		return fmt.Errorf("%w: %s: missing model_name", ErrInvalidDevice, d.Slug)
	case d.Manufacturer == "":
		return fmt.Errorf("%w: %s: missing manufacturer", ErrInvalidDevice, d.Slug)
	case !d.Category.Valid():
		return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidDevice, d.Slug, d.Category)
	case d.OriginalPrice < 0:
		return fmt.Errorf("%w: %s: negative original_price", ErrInvalidDevice, d.Slug)
	}

	switch d.Status {
	case "":
		d.Status = StatusDraft
	case StatusDraft, StatusPublished:
	default:
		return fmt.Errorf("%w: %s: unknown status %q", ErrInvalidDevice, d.Slug, d.Status)
	}

	d.Pros = compactStrings(d.Pros)
	d.Cons = compactStrings(d.Cons)
	d.SafetyRules = compactStrings(d.SafetyRules)

	defects := d.ChronicDefects[:0]
	for _, def := range d.ChronicDefects {
		def.Issue = strings.TrimSpace(def.Issue)
		if def.Issue == "" {
			continue
		}
		def.Frequency = strings.TrimSpace(def.Frequency)
		def.Prevention = strings.TrimSpace(def.Prevention)
		defects = append(defects, def)
	}
	d.ChronicDefects = defects

	for i := range d.UsedChecklist {
		if d.UsedChecklist[i].Step <= 0 {
			d.UsedChecklist[i].Step = i + 1
		}
	}
	sort.SliceStable(d.UsedChecklist, func(i, j int) bool {
		return d.UsedChecklist[i].Step < d.UsedChecklist[j].Step
	})
	return nil
}

// NormalizePost validates a blog post and sanitizes its HTML body.
func NormalizePost(p *BlogPost) error {
	if p == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidPost)
	}
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	p.Title = strings.TrimSpace(p.Title)
	p.ThumbnailURL = strings.TrimSpace(p.ThumbnailURL)
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("%w: slug %q is not URL-safe", ErrInvalidPost, p.Slug)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: %s: missing title", ErrInvalidPost, p.Slug)
	}
	p.Content = SanitizeHTML(p.Content)

	related := make([]string, 0, len(p.RelatedModels))
	seen := make(map[string]struct{}, len(p.RelatedModels))
	for _, s := range p.RelatedModels {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		related = append(related, s)
	}
	p.RelatedModels = related
	return nil
}

func compactStrings(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
