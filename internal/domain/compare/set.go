// Package compare holds a visitor's comparison selection: a small ordered
// set of device references capped at a fixed capacity, plus the session
// registry that owns one set per visitor and the comparison table built
// from a selection.
package compare

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/pmwiki/internal/domain/model"
	"github.com/okian/pmwiki/pkg/metrics"
)

// DefaultMaxItems is the number of devices a visitor can compare at once.
const DefaultMaxItems = 3

// ErrCompareFull is returned by callers that need an error for a rejected add.
var ErrCompareFull = errors.New("compare set is full")

// Item is a lightweight reference to a device chosen for comparison.
type Item struct {
	Slug         string `json:"slug"`
	ModelName    string `json:"model_name"`
	Manufacturer string `json:"manufacturer"`
}

// ItemFromDevice builds the reference stored in a set.
func ItemFromDevice(d *model.Device) Item {
	return Item{Slug: d.Slug, ModelName: d.ModelName, Manufacturer: d.Manufacturer}
}

// Snapshot is an immutable view of a set at one point in time.
type Snapshot struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
	Max   int    `json:"max"`
}

// Slugs returns the slugs of the snapshot in selection order.
func (s Snapshot) Slugs() []string {
	out := make([]string, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Slug
	}
	return out
}

// Set is a bounded, insertion-ordered collection of Items keyed by slug.
// It is safe for concurrent use.
type Set struct {
	mu       sync.Mutex
	items    []Item
	maxItems int

	subs   map[uint64]chan Snapshot
	nextID uint64
	done   chan struct{}
	closed bool
}

// NewSet creates an empty set.
func NewSet(opts ...Option) *Set {
	s := &Set{
		maxItems: DefaultMaxItems,
		subs:     make(map[uint64]chan Snapshot),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxItems <= 0 {
		s.maxItems = DefaultMaxItems
	}
	s.items = make([]Item, 0, s.maxItems)
	return s
}

// Add appends item unless the set is full. It reports whether the slug is
// a member afterwards: true when added or already present, false only when
// the set was full. Adding an existing slug keeps its position and entry.
func (s *Set) Add(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.Slug) >= 0 {
		return true
	}
	if len(s.items) >= s.maxItems {
		metrics.RecordCompareRejected()
		return false
	}
	s.items = append(s.items, item)
	metrics.RecordCompareAdd()
	s.publish()
	return true
}

// Remove deletes the item with the given slug. Unknown slugs are ignored.
func (s *Set) Remove(slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(slug)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	metrics.RecordCompareRemove()
	s.publish()
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return
	}
	s.items = s.items[:0]
	metrics.RecordCompareClear()
	s.publish()
}

// Has reports whether slug is in the set.
func (s *Set) Has(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(slug) >= 0
}

// Items returns a copy of the entries in insertion order.
func (s *Set) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Slugs returns the member slugs in insertion order.
func (s *Set) Slugs() []string {
	return s.Snapshot().Slugs()
}

// Len returns the number of entries.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cap returns the maximum number of entries.
func (s *Set) Cap() int {
	return s.maxItems
}

// Snapshot returns the current state.
func (s *Set) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe returns a channel that first receives the current state and then
// a Snapshot after every change. Slow consumers only see the latest state.
// The channel is closed when ctx is done or the set is closed.
func (s *Set) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.snapshot()
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.mu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.mu.Unlock()
	}()
	return ch
}

// Close ends every subscription. The set stays usable for reads and writes.
func (s *Set) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// publish must be called with s.mu held, after the state change.
func (s *Set) publish() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Set) snapshot() Snapshot {
	return Snapshot{Items: s.copyItems(), Count: len(s.items), Max: s.maxItems}
}

func (s *Set) copyItems() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) indexOf(slug string) int {
	for i := range s.items {
		if s.items[i].Slug == slug {
			return i
		}
	}
	return -1
}
