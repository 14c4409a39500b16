package model

import (
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// BlogPost is an article in the blog section.
type BlogPost struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Slug          string    `json:"slug" yaml:"slug"`
	Content       string    `json:"content" yaml:"content"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty" yaml:"thumbnail_url"`
	RelatedModels []string  `json:"related_models" yaml:"related_models"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Clone returns a copy whose slices do not alias p's.
func (p *BlogPost) Clone() *BlogPost {
	c := *p
	c.RelatedModels = append([]string(nil), p.RelatedModels...)
	return &c
}

// htmlPolicy is safe for concurrent use once built.
var htmlPolicy = bluemonday.UGCPolicy() //nolint:gochecknoglobals // shared sanitizer policy

// SanitizeHTML strips scripts, event handlers and other unsafe markup from
// author-supplied HTML while keeping formatting tags.
func SanitizeHTML(s string) string {
	return htmlPolicy.Sanitize(s)
}
