package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pmwiki/internal/domain/model"
)

// MemoryStore is an in-memory Store used for local development and tests.
// Returned records are copies; mutating them does not affect the store.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[string]*model.Device // by slug
	posts   map[string]*model.BlogPost
	now     func() time.Time

	seedDevices []*model.Device
	seedPosts   []*model.BlogPost
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store, applying any preload options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		devices: make(map[string]*model.Device),
		posts:   make(map[string]*model.BlogPost),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	ctx := context.Background()
	for _, d := range s.seedDevices {
		_ = s.UpsertDevice(ctx, d)
	}
	for _, p := range s.seedPosts {
		_ = s.UpsertPost(ctx, p)
	}
	s.seedDevices, s.seedPosts = nil, nil
	return s
}

// ListPublished implements DeviceStore.
func (s *MemoryStore) ListPublished(ctx context.Context, filter ListFilter) ([]*model.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: category %q", ErrInvalidInput, filter.Category)
	}
	s.mu.RLock()
	out := make([]*model.Device, 0, len(s.devices))
	for _, d := range s.devices {
		if !d.Published() {
			continue
		}
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		out = append(out, d.Clone())
	}
	s.mu.RUnlock()
	SortListing(out)
	return out, nil
}

// GetBySlug implements DeviceStore.
func (s *MemoryStore) GetBySlug(ctx context.Context, slug string) (*model.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[slug]
	if !ok || !d.Published() {
		return nil, fmt.Errorf("device %q: %w", slug, ErrNotFound)
	}
	return d.Clone(), nil
}

// GetBySlugs implements DeviceStore.
func (s *MemoryStore) GetBySlugs(ctx context.Context, slugs []string) ([]*model.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Device, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		if d, ok := s.devices[slug]; ok && d.Published() {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

// Similar implements DeviceStore.
func (s *MemoryStore) Similar(ctx context.Context, q SimilarQuery) ([]model.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	match, key, err := similarity(q)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return []model.Summary{}, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = SimilarLimit
	}

	s.mu.RLock()
	candidates := make([]*model.Device, 0)
	for _, d := range s.devices {
		if !d.Published() || d.ID == q.ExcludeID {
			continue
		}
		if match(d) {
			candidates = append(candidates, d)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ki, kj := key(candidates[i]), key(candidates[j])
		if ki != kj {
			return ki < kj
		}
		return candidates[i].Slug < candidates[j].Slug
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]model.Summary, len(candidates))
	for i, d := range candidates {
		out[i] = d.Summary()
	}
	s.mu.RUnlock()
	return out, nil
}

// similarity returns the predicate and sort key of q, or a nil predicate
// when q cannot match anything.
func similarity(q SimilarQuery) (func(*model.Device) bool, func(*model.Device) float64, error) {
	if q.Value <= 0 || math.IsNaN(q.Value) {
		switch q.Kind {
		case SimilarByPrice, SimilarByRange, SimilarByWeight:
			return nil, nil, nil
		}
	}
	switch q.Kind {
	case SimilarByPrice:
		low, high := math.Max(0, q.Value-UsedPriceWindow), q.Value+UsedPriceWindow
		return func(d *model.Device) bool {
				return d.UsedPriceA != nil && float64(*d.UsedPriceA) >= low && float64(*d.UsedPriceA) <= high
			}, func(d *model.Device) float64 {
				return float64(*d.UsedPriceA)
			}, nil
	case SimilarByRange:
		low, high := math.Max(0, q.Value-RangeWindow), q.Value+RangeWindow
		return func(d *model.Device) bool {
				return d.RangeReal80kg != nil && *d.RangeReal80kg >= low && *d.RangeReal80kg <= high
			}, func(d *model.Device) float64 {
				return *d.RangeReal80kg
			}, nil
	case SimilarByWeight:
		return func(d *model.Device) bool {
				return d.Weight != nil && *d.Weight < q.Value
			}, func(d *model.Device) float64 {
				return *d.Weight
			}, nil
	default:
		return nil, nil, fmt.Errorf("%w: similar kind %q", ErrInvalidInput, q.Kind)
	}
}

// UpsertDevice implements DeviceStore.
func (s *MemoryStore) UpsertDevice(ctx context.Context, d *model.Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: nil device", ErrInvalidInput)
	}
	c := d.Clone()
	if err := model.NormalizeDevice(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.devices[c.Slug]; ok {
		c.ID = old.ID
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = s.now().UTC()
	}
	s.devices[c.Slug] = c
	d.ID, d.UpdatedAt = c.ID, c.UpdatedAt
	return nil
}

// ListPosts implements BlogStore.
func (s *MemoryStore) ListPosts(ctx context.Context) ([]*model.BlogPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]*model.BlogPost, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// GetPost implements BlogStore.
func (s *MemoryStore) GetPost(ctx context.Context, slug string) (*model.BlogPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[slug]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}
	return p.Clone(), nil
}

// UpsertPost implements BlogStore.
func (s *MemoryStore) UpsertPost(ctx context.Context, p *model.BlogPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: nil post", ErrInvalidInput)
	}
	c := p.Clone()
	if err := model.NormalizePost(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.posts[c.Slug]; ok {
		c.ID = old.ID
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now().UTC()
	}
	s.posts[c.Slug] = c
	p.ID, p.CreatedAt = c.ID, c.CreatedAt
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// SortListing orders devices for the home listing: release year desc,
// then used price asc, missing values last, then slug.
func SortListing(devices []*model.Device) {
	sort.SliceStable(devices, func(i, j int) bool {
		a, b := devices[i], devices[j]
		if c := compareYearDesc(a.ReleaseYear, b.ReleaseYear); c != 0 {
			return c < 0
		}
		if c := comparePriceAsc(a.UsedPriceA, b.UsedPriceA); c != 0 {
			return c < 0
		}
		return a.Slug < b.Slug
	})
}

func compareYearDesc(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

func comparePriceAsc(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
