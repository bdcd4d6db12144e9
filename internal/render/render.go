// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the presentation
// site. Every page template is paired with the shared base layout, which
// carries the header navigation, the announcement ticker and the footer.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobalert/internal/markdown"
	"jobalert/internal/models"
	"jobalert/internal/pagination"
	"jobalert/internal/slug"
)

//go:embed templates/site/*.html
var siteFS embed.FS

// PageData holds all data passed to site templates.
type PageData struct {
	SiteName    string                // Filled in by the renderer
	Title       string                // Page title for <title> tag
	Description string                // Meta description
	Section     string                // Active header link (e.g., "home", "courses")
	Categories  []models.Category     // Header navigation
	Carousel    []models.CarouselItem // Announcement ticker
	Data        map[string]any        // Page-specific data
	Year        int
}

// Renderer handles template parsing and execution for site pages.
type Renderer struct {
	siteName  string
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing all site templates from the embedded
// filesystem.
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		siteName:  siteName,
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "nav-link active"
				}
				return "nav-link"
			},
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"date":         formatDate,
			"body":         renderBody,
			"categoryPath": categoryPath,
			"tagPath": func(name string) string {
				return "/tag/" + url.PathEscape(name)
			},
			"pageURL":   pageURL,
			"pageRange": pageRange,
			"truncate":  truncate,
			"add":       func(a, b int) int { return a + b },
			"sub":       func(a, b int) int { return a - b },
		},
	}

	entries, err := siteFS.ReadDir("templates/site")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			siteFS, "templates/site/base.html", "templates/site/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Has reports whether a page template with the given name exists.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Page renders a full site page with the given status. The page is
// rendered into a buffer first so a template failure still yields a clean
// 500 instead of a half-written document.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.SiteName = rn.siteName
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("template execution failed", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// formatDate accepts time.Time or *time.Time and renders "January 2, 2006".
// Nil and zero times render as "".
func formatDate(v any) string {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return ""
		}
		t = *tv
	default:
		return ""
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func renderBody(body string, format models.BodyFormat) template.HTML {
	return markdown.Render(body, string(format))
}

// categoryPath links a category by its slug, deriving one from the name
// when the API did not send it.
func categoryPath(c models.Category) string {
	s := c.Slug
	if s == "" {
		s = slug.Generate(c.Name)
	}
	return "/category/" + s
}

// pageURL sets the page query parameter on base, keeping other parameters.
func pageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// pageRange lists the page numbers shown around the current page.
func pageRange(m pagination.Meta) []int {
	const window = 2
	if m.TotalPages <= 1 {
		return nil
	}
	lo := max(1, m.Page-window)
	hi := min(m.TotalPages, m.Page+window)
	pages := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}
	return pages
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
