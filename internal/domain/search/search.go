// Package search matches published devices against free-text queries over
// model name, manufacturer, sub-model and chronic defect keywords.
package search

import (
	"strings"

	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/scoring"
)

// DefaultLimit caps the number of hits returned.
const DefaultLimit = 30

// Hit is one search result.
type Hit struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	ModelName     string `json:"model_name"`
	SubModel      string `json:"sub_model,omitempty"`
	Manufacturer  string `json:"manufacturer"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	ValueScore    *int   `json:"value_score"`
}

// Text returns the searchable text of a device.
func Text(d *model.Device) string {
	parts := make([]string, 0, 3+len(d.ChronicDefects))
	for _, s := range []string{d.ModelName, d.Manufacturer, d.SubModel} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, def := range d.ChronicDefects {
		if def.Issue != "" {
			parts = append(parts, def.Issue)
		}
	}
	return strings.Join(parts, " ")
}

// Index is an immutable search index over a device listing. Build it once
// per catalog snapshot.
type Index struct {
	devices []*model.Device
	texts   []string
}

// NewIndex indexes devices, keeping their order for results.
func NewIndex(devices []*model.Device) *Index {
	idx := &Index{devices: devices, texts: make([]string, len(devices))}
	for i, d := range devices {
		idx.texts[i] = strings.ToLower(Text(d))
	}
	return idx
}

// Len returns the number of indexed devices.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.devices)
}

// Search returns devices whose text contains every whitespace-separated
// term of query, case-insensitively, in listing order. An empty query
// matches everything. limit <= 0 means DefaultLimit.
func (idx *Index) Search(query string, limit int) []Hit {
	if limit <= 0 {
		limit = DefaultLimit
	}
	hits := make([]Hit, 0)
	if idx == nil {
		return hits
	}
	terms := strings.Fields(strings.ToLower(query))
	for i, d := range idx.devices {
		if len(hits) >= limit {
			break
		}
		if !matchAll(idx.texts[i], terms) {
			continue
		}
		hits = append(hits, toHit(d))
	}
	return hits
}

func matchAll(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

func toHit(d *model.Device) Hit {
	return Hit{
		ID:            d.ID,
		Slug:          d.Slug,
		ModelName:     d.ModelName,
		SubModel:      d.SubModel,
		Manufacturer:  d.Manufacturer,
		Category:      string(d.Category),
		CategoryLabel: d.Category.Label(),
		ValueScore:    scoring.ScorePtr(d),
	}
}
