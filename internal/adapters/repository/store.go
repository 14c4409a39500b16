// Package repository defines the catalog store interfaces and an in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/pmwiki/internal/domain/model"
)

// SimilarLimit is the default number of similar models returned per query.
const SimilarLimit = 6

// Similarity windows.
const (
	UsedPriceWindow = 100000
	RangeWindow     = 10
)

// ListFilter narrows the published listing.
type ListFilter struct {
	// Category restricts the listing; empty means all categories.
	Category model.Category
}

// SimilarKind selects the similarity criterion.
type SimilarKind string

// Similarity criteria.
const (
	// SimilarByPrice matches used_price_a within ±UsedPriceWindow.
	SimilarByPrice SimilarKind = "price"
	// SimilarByRange matches range_real_80kg within ±RangeWindow.
	SimilarByRange SimilarKind = "range"
	// SimilarByWeight matches strictly lighter devices, lightest first.
	SimilarByWeight SimilarKind = "weight"
)

// SimilarQuery asks for published devices resembling a reference value.
// A missing or non-positive reference yields no results.
type SimilarQuery struct {
	Kind      SimilarKind
	ExcludeID string
	Value     float64
	Limit     int
}

// DeviceStore reads and writes device records.
type DeviceStore interface {
	// ListPublished returns published devices ordered by release year desc
	// then typical used price asc, missing values last, then slug.
	ListPublished(ctx context.Context, filter ListFilter) ([]*model.Device, error)
	// GetBySlug returns a published device or ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*model.Device, error)
	// GetBySlugs returns the published devices among slugs, in no particular order.
	GetBySlugs(ctx context.Context, slugs []string) ([]*model.Device, error)
	// Similar returns summaries of devices matching q.
	Similar(ctx context.Context, q SimilarQuery) ([]model.Summary, error)
	// UpsertDevice inserts or replaces the device with the same slug.
	UpsertDevice(ctx context.Context, d *model.Device) error
}

// BlogStore reads and writes blog posts.
type BlogStore interface {
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context) ([]*model.BlogPost, error)
	// GetPost returns a post or ErrNotFound.
	GetPost(ctx context.Context, slug string) (*model.BlogPost, error)
	// UpsertPost inserts or replaces the post with the same slug.
	UpsertPost(ctx context.Context, p *model.BlogPost) error
}

// Store is the full catalog store.
type Store interface {
	DeviceStore
	BlogStore
	Close() error
}
