package repository

import (
	"time"

	"github.com/okian/pmwiki/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithDevices preloads devices. Invalid records are skipped.
func WithDevices(devices ...*model.Device) Option {
	return func(s *MemoryStore) {
		s.seedDevices = append(s.seedDevices, devices...)
	}
}

// WithPosts preloads blog posts. Invalid records are skipped.
func WithPosts(posts ...*model.BlogPost) Option {
	return func(s *MemoryStore) {
		s.seedPosts = append(s.seedPosts, posts...)
	}
}

// WithClock replaces time.Now for update timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
