// Package ranking orders devices by value score.
package ranking

import (
	"errors"
	"sort"

	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/internal/domain/scoring"
)

// Sentinel errors for ranking reads.
var (
	ErrNotRanked    = errors.New("model not ranked")
	ErrInvalidLimit = errors.New("invalid ranking limit")
)

// Entry is one row of the value ranking.
type Entry struct {
	Rank          int    `json:"rank"`
	Slug          string `json:"slug"`
	ModelName     string `json:"model_name"`
	Manufacturer  string `json:"manufacturer"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	Score         int    `json:"score"`
}

// Board is an immutable ranking. Build one per catalog snapshot.
type Board struct {
	entries []Entry
	bySlug  map[string]int
}

// Build scores devices and ranks those with a score. Ordering is score
// desc, then slug asc; equal scores share a rank and the next distinct
// score takes the following rank.
func Build(devices []*model.Device) *Board {
	entries := make([]Entry, 0, len(devices))
	for _, d := range devices {
		score, ok := scoring.ValueScore(scoring.FromDevice(d))
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Slug:          d.Slug,
			ModelName:     d.ModelName,
			Manufacturer:  d.Manufacturer,
			Category:      string(d.Category),
			CategoryLabel: d.Category.Label(),
			Score:         score,
		})
	}
	sortEntries(entries)
	assignRanksWithTies(entries)

	b := &Board{entries: entries, bySlug: make(map[string]int, len(entries))}
	for i, e := range entries {
		b.bySlug[e.Slug] = i
	}
	return b
}

// Len returns the number of ranked devices.
func (b *Board) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// TopN returns up to n entries from the top. n must be positive.
func (b *Board) TopN(n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	if b == nil {
		return []Entry{}, nil
	}
	if n > len(b.entries) {
		n = len(b.entries)
	}
	out := make([]Entry, n)
	copy(out, b.entries[:n])
	return out, nil
}

// Rank returns the entry for slug.
func (b *Board) Rank(slug string) (Entry, error) {
	if b == nil {
		return Entry{}, ErrNotRanked
	}
	i, ok := b.bySlug[slug]
	if !ok {
		return Entry{}, ErrNotRanked
	}
	return b.entries[i], nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Slug < entries[j].Slug
	})
}

// assignRanksWithTies expects entries sorted by score desc.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}
}
