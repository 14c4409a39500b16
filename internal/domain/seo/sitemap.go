package seo

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pmwiki/internal/domain/model"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one sitemap entry.
type URL struct {
	Loc        string  `json:"loc"`
	LastMod    string  `json:"lastmod"`
	ChangeFreq string  `json:"changefreq"`
	Priority   float64 `json:"priority"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

// SitemapEntries lists the home page, the blog index and every published
// device page. Devices without an update time use now.
func SitemapEntries(baseURL string, devices []*model.Device, now time.Time) []URL {
	base := strings.TrimRight(baseURL, "/")
	ts := now.UTC().Format(time.RFC3339)
	out := make([]URL, 0, len(devices)+2)
	out = append(out,
		URL{Loc: base, LastMod: ts, ChangeFreq: "daily", Priority: 1.0},
		URL{Loc: base + "/blog", LastMod: ts, ChangeFreq: "daily", Priority: 0.9},
	)
	for _, d := range devices {
		if !d.Published() {
			continue
		}
		mod := now
		if !d.UpdatedAt.IsZero() {
			mod = d.UpdatedAt
		}
		out = append(out, URL{
			Loc:        ModelURL(base, d.Slug),
			LastMod:    mod.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}
	return out
}

// Sitemap renders entries as a sitemaps.org XML document.
func Sitemap(entries []URL) ([]byte, error) {
	set := urlSet{XMLNS: sitemapNS, URLs: make([]xmlURL, len(entries))}
	for i, e := range entries {
		set.URLs[i] = xmlURL{
			Loc:        e.Loc,
			LastMod:    e.LastMod,
			ChangeFreq: e.ChangeFreq,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders robots.txt: everything is crawlable except /private/.
func Robots(baseURL string) string {
	var b strings.Builder
	b.WriteString("User-Agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /private/\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n")
	return b.String()
}

// ParseSitemap returns the locations listed in a sitemaps.org document.
func ParseSitemap(b []byte) ([]string, error) {
	var set urlSet
	if err := xml.Unmarshal(b, &set); err != nil {
		return nil, err
	}
	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}
