// Package seo builds search-engine facing documents: schema.org JSON-LD,
// page metadata, sitemap.xml and robots.txt.
package seo

import (
	"strings"

	"github.com/okian/pmwiki/internal/domain/model"
)

const schemaContext = "https://schema.org"

// Brand is a schema.org Brand.
type Brand struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// AggregateOffer is a schema.org AggregateOffer.
type AggregateOffer struct {
	Type          string `json:"@type"`
	URL           string `json:"url,omitempty"`
	PriceCurrency string `json:"priceCurrency"`
	LowPrice      *int64 `json:"lowPrice"`
	HighPrice     int64  `json:"highPrice"`
}

// Product is a schema.org Product describing one device.
type Product struct {
	Context     string         `json:"@context"`
	Type        string         `json:"@type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	SKU         string         `json:"sku,omitempty"`
	Image       []string       `json:"image,omitempty"`
	Brand       Brand          `json:"brand"`
	Category    string         `json:"category"`
	Offers      AggregateOffer `json:"offers"`
}

// Answer is a schema.org Answer.
type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

// Question is a schema.org Question.
type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

// FAQPage is a schema.org FAQPage.
type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

// PendingAnswer is used when a device has no entries for a FAQ answer.
const PendingAnswer = "정보가 업데이트 중입니다."

// ModelURL is the canonical URL of a device page.
func ModelURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/models/" + slug
}

// ProductFor builds the Product document for a device page. The offer
// spans the typical used price to the original price in KRW.
func ProductFor(d *model.Device, baseURL string) Product {
	desc := d.OneLineSummary
	if desc == "" {
		desc = d.ModelName + " 중고 적정가 및 고질병 정리"
	}
	p := Product{
		Context:     schemaContext,
		Type:        "Product",
		Name:        d.ModelName,
		Description: desc,
		SKU:         d.Slug,
		Brand:       Brand{Type: "Brand", Name: d.Manufacturer},
		Category:    d.Category.Label(),
		Offers: AggregateOffer{
			Type:          "AggregateOffer",
			PriceCurrency: "KRW",
			LowPrice:      d.UsedPriceA,
			HighPrice:     d.OriginalPrice,
		},
	}
	if baseURL != "" {
		p.Offers.URL = ModelURL(baseURL, d.Slug)
	}
	if d.ImageURL != "" {
		p.Image = []string{d.ImageURL}
	}
	return p
}

// FAQFor builds the FAQ document answering the defect and checklist
// questions for a device.
func FAQFor(d *model.Device) FAQPage {
	defects := make([]string, 0, len(d.ChronicDefects))
	for _, def := range d.ChronicDefects {
		defects = append(defects, def.Issue)
	}
	checks := make([]string, 0, len(d.UsedChecklist))
	for _, c := range d.UsedChecklist {
		checks = append(checks, c.Part)
	}
	return FAQPage{
		Context: schemaContext,
		Type:    "FAQPage",
		MainEntity: []Question{
			question(d.ModelName+"의 고질병 및 주의사항은 무엇인가요?", defects),
			question("중고로 "+d.ModelName+" 구매 시 체크리스트는?", checks),
		},
	}
}

func question(name string, parts []string) Question {
	text := PendingAnswer
	if len(parts) > 0 {
		text = strings.Join(parts, ", ")
	}
	return Question{Type: "Question", Name: name, AcceptedAnswer: Answer{Type: "Answer", Text: text}}
}

// Meta is the title and description of a page.
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SiteName is appended to page titles.
const SiteName = "PM Wiki"

// ModelMeta returns the metadata of a device page; nil means not found.
func ModelMeta(d *model.Device) Meta {
	if d == nil {
		return Meta{Title: "모델 없음 - " + SiteName}
	}
	return Meta{
		Title:       d.ModelName + " 중고 거래 적정가 및 고질병 정리 - " + SiteName,
		Description: d.ModelName + " 적정 중고가, 고질병, 직거래 체크리스트 정보",
	}
}

// PostMeta returns the metadata of a blog post page.
func PostMeta(p *model.BlogPost) Meta {
	if p == nil {
		return Meta{Title: "글 없음 - " + SiteName}
	}
	return Meta{Title: p.Title + " - " + SiteName, Description: p.Title}
}
