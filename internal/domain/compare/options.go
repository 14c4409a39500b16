package compare

import (
	"time"

	"github.com/okian/pmwiki/pkg/logger"
)

// Option configures a Set.
type Option func(*Set)

// WithMaxItems sets the capacity of a set. Non-positive values keep the default.
func WithMaxItems(n int) Option {
	return func(s *Set) {
		s.maxItems = n
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxSessions bounds the number of live sessions. When the bound is hit
// the least recently used session is evicted. Zero or negative means unbounded.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		r.maxSessions = n
	}
}

// WithSessionTTL evicts sessions idle for longer than ttl. Zero disables expiry.
func WithSessionTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

// WithSetOptions applies opts to every set the registry creates.
func WithSetOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.setOpts = append(r.setOpts, opts...)
	}
}

// WithLogger sets the registry logger.
func WithLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}
