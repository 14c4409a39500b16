package compare

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pmwiki/pkg/logger"
	"github.com/okian/pmwiki/pkg/metrics"
)

// Default registry bounds.
const (
	DefaultMaxSessions = 10000
	DefaultSessionTTL  = 24 * time.Hour
)

type session struct {
	id       string
	set      *Set
	lastSeen time.Time
}

// Registry owns one Set per visitor session. Sessions are kept in
// least-recently-used order; the oldest is evicted when the registry is
// full, and sessions idle for longer than the TTL are dropped on access
// and on Sweep.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*list.Element
	order       *list.List // front = most recently used
	maxSessions int
	ttl         time.Duration
	setOpts     []Option
	logger      logger.Logger
	now         func() time.Time
}

// NewRegistry creates an empty session registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:    make(map[string]*list.Element),
		order:       list.New(),
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		logger:      logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the set for id, creating a new session when id is empty,
// malformed, unknown, or expired. The returned id is the one the caller
// must hand back to the visitor; created reports whether it is new.
func (r *Registry) Acquire(ctx context.Context, id string) (sessionID string, set *Set, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if s, ok := r.lookupLocked(id, now); ok {
		return s.id, s.set, false
	}

	for r.maxSessions > 0 && r.order.Len() >= r.maxSessions {
		oldest := r.order.Back()
		if oldest == nil {
			break
		}
		evicted := oldest.Value.(*session)
		r.removeLocked(oldest)
		metrics.RecordCompareEviction()
		r.logger.Debug(ctx, "compare session evicted", logger.String("session", evicted.id))
	}

	s := &session{id: uuid.New().String(), set: NewSet(r.setOpts...), lastSeen: now}
	r.sessions[s.id] = r.order.PushFront(s)
	metrics.UpdateCompareSessions(r.order.Len())
	return s.id, s.set, true
}

// Lookup returns the set for an existing, unexpired session without
// creating one.
func (r *Registry) Lookup(id string) (*Set, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.lookupLocked(id, r.now())
	if !ok {
		return nil, false
	}
	return s.set, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// Sweep drops every session idle for longer than the TTL and returns how
// many were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for e := r.order.Back(); e != nil; {
		s := e.Value.(*session)
		if !s.lastSeen.Before(cutoff) {
			break
		}
		prev := e.Prev()
		r.removeLocked(e)
		removed++
		e = prev
	}
	if removed > 0 {
		metrics.UpdateCompareSessions(r.order.Len())
	}
	return removed
}

// Close ends every session and its subscriptions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for e := r.order.Front(); e != nil; e = e.Next() {
		e.Value.(*session).set.Close()
	}
	r.sessions = make(map[string]*list.Element)
	r.order.Init()
	metrics.UpdateCompareSessions(0)
}

func (r *Registry) lookupLocked(id string, now time.Time) (*session, bool) {
	if id == "" {
		return nil, false
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s := e.Value.(*session)
	if r.ttl > 0 && now.Sub(s.lastSeen) > r.ttl {
		r.removeLocked(e)
		metrics.UpdateCompareSessions(r.order.Len())
		return nil, false
	}
	s.lastSeen = now
	r.order.MoveToFront(e)
	return s, true
}

func (r *Registry) removeLocked(e *list.Element) {
	s := e.Value.(*session)
	r.order.Remove(e)
	delete(r.sessions, s.id)
	s.set.Close()
}
