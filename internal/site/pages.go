// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"jobalert/internal/apiclient"
	"jobalert/internal/models"
	"jobalert/internal/pagination"
	"jobalert/internal/slug"
)

const (
	listingLimit = 20
	searchLimit  = 50
)

// Home renders the homepage from the API's aggregate endpoint, which
// already carries the navigation and ticker data.
func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	home, err := s.api.Home(r.Context())
	if err != nil {
		s.fail(w, r, nil, err)
		return
	}

	c := &chrome{categories: home.Categories, carousel: activeOnly(home.Carousel)}
	data := c.page("", "home", map[string]any{"Home": home})
	data.Description = "Latest government jobs, results, admit cards, answer keys and yojna updates."
	s.render.Page(w, r, http.StatusOK, "home", data)
}

// Category renders one page of a category's posts.
func (s *Site) Category(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categorySlug := chi.URLParam(r, "slug")
	page := pagination.ParseInt(r.URL.Query().Get("page"), 1)

	var g errgroup.Group
	c := s.loadChrome(ctx, &g)
	var result *apiclient.CategoryPage
	g.Go(func() error {
		var err error
		result, err = s.api.CategoryPosts(ctx, categorySlug, page, listingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, c, err)
		return
	}

	path := "/category/" + categorySlug
	data := c.page(result.Category.Name, path, map[string]any{
		"Category": result.Category,
		"Posts":    result.Posts,
		"Meta":     result.Meta,
		"BaseURL":  path,
	})
	if result.Category.Description != nil {
		data.Description = *result.Category.Description
	}
	s.render.Page(w, r, http.StatusOK, "category", data)
}

// Post renders a single post.
func (s *Site) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postSlug := chi.URLParam(r, "slug")

	var g errgroup.Group
	c := s.loadChrome(ctx, &g)
	var post *models.Post
	g.Go(func() error {
		var err error
		post, err = s.api.Post(ctx, postSlug)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, c, err)
		return
	}

	section, categoryPath := "", ""
	if post.Category != nil {
		categoryPath = "/category/" + slug.Generate(post.Category.Name)
		section = categoryPath
	}
	data := c.page(post.Title, section, map[string]any{
		"Post":         post,
		"CategoryPath": categoryPath,
	})
	data.Description = post.Description
	s.render.Page(w, r, http.StatusOK, "post", data)
}

// Tag renders one page of posts carrying a tag. An unknown tag is an
// empty listing, not a 404.
func (s *Site) Tag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	page := pagination.ParseInt(r.URL.Query().Get("page"), 1)

	var g errgroup.Group
	c := s.loadChrome(ctx, &g)
	var result *apiclient.PostPage
	g.Go(func() error {
		var err error
		result, err = s.api.TagPosts(ctx, name, page, listingLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, c, err)
		return
	}

	path := "/tag/" + url.PathEscape(name)
	s.render.Page(w, r, http.StatusOK, "tag", c.page("#"+name, "", map[string]any{
		"Tag":     name,
		"Posts":   result.Posts,
		"Meta":    result.Meta,
		"BaseURL": path,
	}))
}

// Search renders the global search results for ?q.
func (s *Site) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	var g errgroup.Group
	c := s.loadChrome(ctx, &g)
	posts := []models.PostSummary{}
	if q != "" {
		g.Go(func() error {
			found, err := s.api.Search(ctx, q, searchLimit)
			if err != nil {
				return err
			}
			posts = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(w, r, c, err)
		return
	}

	title := "Search"
	if q != "" {
		title = "Search: " + q
	}
	s.render.Page(w, r, http.StatusOK, "search", c.page(title, "", map[string]any{
		"Query": q,
		"Posts": posts,
	}))
}

// Courses renders the course catalog with its filters. Catalog failures
// render the empty state.
func (s *Site) Courses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := filterFromRequest(r)

	var g errgroup.Group
	c := s.loadChrome(ctx, &g)
	var courses []apiclient.Course
	g.Go(func() error {
		courses = s.loadCourses(ctx)
		return nil
	})
	g.Wait()

	s.render.Page(w, r, http.StatusOK, "courses", c.page("Courses", "courses", map[string]any{
		"Courses":           f.courses(courses),
		"Total":             len(courses),
		"CatalogCategories": courseCategories(courses),
		"Query":             f.query,
		"Category":          f.category,
		"Pricing":           f.pricing,
	}))
}

// MockTests renders the mock-test series catalog with its filters.
func (s *Site) MockTests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := filterFromRequest(r)

	var g errgroup.Group
	c := s.loadChrome(ctx, &g)
	var series []apiclient.MockSeries
	g.Go(func() error {
		series = s.loadMockSeries(ctx)
		return nil
	})
	g.Wait()

	s.render.Page(w, r, http.StatusOK, "mock_tests", c.page("Mock Tests", "mock-tests", map[string]any{
		"Series":            f.series(series),
		"Total":             len(series),
		"CatalogCategories": seriesCategories(series),
		"Query":             f.query,
		"Category":          f.category,
		"Pricing":           f.pricing,
	}))
}

// NotFound renders the 404 page with the usual layout.
func (s *Site) NotFound(w http.ResponseWriter, r *http.Request) {
	var g errgroup.Group
	c := s.loadChrome(r.Context(), &g)
	g.Wait()
	s.notFound(w, r, c)
}

// Health is the site's liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func activeOnly(items []models.CarouselItem) []models.CarouselItem {
	out := make([]models.CarouselItem, 0, len(items))
	for _, it := range items {
		if it.IsActive {
			out = append(out, it)
		}
	}
	return out
}
