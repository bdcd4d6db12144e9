package site

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"jobalert/internal/apiclient"
	"jobalert/internal/middleware"
)

// catalogFilter holds the course and mock-test page filters.
type catalogFilter struct {
	query    string // lower-cased free text
	category string // exact category name, "" for all
	pricing  string // apiclient.PricingFree, apiclient.PricingPaid or ""
}

func filterFromRequest(r *http.Request) catalogFilter {
	q := r.URL.Query()
	f := catalogFilter{
		query:    strings.TrimSpace(q.Get("q")),
		category: strings.TrimSpace(q.Get("category")),
	}
	if f.category == "all" {
		f.category = ""
	}
	switch p := strings.ToLower(q.Get("pricing")); p {
	case apiclient.PricingFree, apiclient.PricingPaid:
		f.pricing = p
	}
	return f
}

func (f catalogFilter) matchesText(fields ...string) bool {
	if f.query == "" {
		return true
	}
	needle := strings.ToLower(f.query)
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func (f catalogFilter) matchesPricing(free bool) bool {
	switch f.pricing {
	case apiclient.PricingFree:
		return free
	case apiclient.PricingPaid:
		return !free
	}
	return true
}

// courses returns the courses matching every filter. Text matches title,
// description, category or any author name.
func (f catalogFilter) courses(all []apiclient.Course) []apiclient.Course {
	out := make([]apiclient.Course, 0, len(all))
	for i := range all {
		c := &all[i]
		if f.category != "" && c.CategoryName() != f.category {
			continue
		}
		if !f.matchesPricing(c.IsFree()) {
			continue
		}
		fields := []string{c.Title, deref(c.Description), c.CategoryName()}
		for _, a := range c.Authors {
			fields = append(fields, a.FullName)
		}
		if !f.matchesText(fields...) {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// series returns the mock-test series matching every filter. Text matches
// title, description or any category.
func (f catalogFilter) series(all []apiclient.MockSeries) []apiclient.MockSeries {
	out := make([]apiclient.MockSeries, 0, len(all))
	for i := range all {
		m := &all[i]
		names := make([]string, 0, len(m.Categories))
		for _, c := range m.Categories {
			names = append(names, c.Name)
		}
		if f.category != "" && !slices.Contains(names, f.category) {
			continue
		}
		if !f.matchesPricing(m.IsFree()) {
			continue
		}
		if !f.matchesText(append([]string{m.Title, deref(m.Description)}, names...)...) {
			continue
		}
		out = append(out, *m)
	}
	return out
}

// courseCategories lists the distinct course categories, sorted.
func courseCategories(courses []apiclient.Course) []string {
	var names []string
	for i := range courses {
		if n := courses[i].CategoryName(); n != "" {
			names = append(names, n)
		}
	}
	return sortedUnique(names)
}

func seriesCategories(series []apiclient.MockSeries) []string {
	var names []string
	for _, m := range series {
		for _, c := range m.Categories {
			if c.Name != "" {
				names = append(names, c.Name)
			}
		}
	}
	return sortedUnique(names)
}

func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}

func (s *Site) loadCourses(ctx context.Context) []apiclient.Course {
	courses, err := s.catalog.Courses(ctx)
	if err != nil {
		slog.Warn("load courses failed", "error", err, "request_id", middleware.RequestIDFrom(ctx))
		return []apiclient.Course{}
	}
	return courses
}

func (s *Site) loadMockSeries(ctx context.Context) []apiclient.MockSeries {
	series, err := s.catalog.MockSeries(ctx)
	if err != nil {
		slog.Warn("load mock series failed", "error", err, "request_id", middleware.RequestIDFrom(ctx))
		return []apiclient.MockSeries{}
	}
	return series
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
