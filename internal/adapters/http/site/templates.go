package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/okian/pmwiki/internal/domain/format"
	"github.com/okian/pmwiki/internal/domain/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page template names.
const (
	pageHome     = "home"
	pageModel    = "model"
	pageCompare  = "compare"
	pageBlog     = "blog"
	pagePost     = "post"
	pageNotFound = "notfound"
)

var funcs = template.FuncMap{ //nolint:gochecknoglobals // template helpers
	"price":     format.Price,
	"pricePtr":  format.PricePtr,
	"usedRange": format.UsedRange,
	"number":    format.Number,
	"unit":      format.NumberUnit,
	"score": func(v *int) string {
		if v == nil {
			return format.Placeholder
		}
		return format.Score(*v, true)
	},
	"label": func(c model.Category) string { return c.Label() },
	"yesno": func(v *bool) string {
		switch {
		case v == nil:
			return format.Placeholder
		case *v:
			return "예"
		default:
			return "아니오"
		}
	},
	"year": func(v *int) string {
		if v == nil {
			return format.Placeholder
		}
		return fmt.Sprintf("%d년", *v)
	},
	"similar": func(title string, items []model.Summary) similarList {
		return similarList{Title: title, Items: items}
	},
	"safeHTML": func(s string) template.HTML {
		// Post bodies are sanitized when they are ingested.
		return template.HTML(s) //nolint:gosec // sanitized on ingestion
	},
}

// similarList is one recommendation block on the model page.
type similarList struct {
	Title string
	Items []model.Summary
}

// renderer holds one template set per page, each combined with the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageHome, pageModel, pageCompare, pageBlog, pagePost, pageNotFound} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrTemplate, name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// render executes a page into a buffer first so a template error still
// produces a clean 500.
func (r *renderer) render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%w: unknown page %s", ErrTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrTemplate, name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
