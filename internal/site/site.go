// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site serves the server-rendered presentation site. Each page
// handler calls the Content API, merges the results into page data and
// renders it through the shared layout.
package site

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"jobalert/internal/apiclient"
	"jobalert/internal/middleware"
	"jobalert/internal/models"
	"jobalert/internal/render"
)

// ContentAPI is the subset of the Content API the site reads from.
type ContentAPI interface {
	Home(ctx context.Context) (*models.Home, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Carousel(ctx context.Context, onlyActive bool) ([]models.CarouselItem, error)
	CategoryPosts(ctx context.Context, slug string, page, limit int) (*apiclient.CategoryPage, error)
	TagPosts(ctx context.Context, name string, page, limit int) (*apiclient.PostPage, error)
	Post(ctx context.Context, slug string) (*models.Post, error)
	Search(ctx context.Context, q string, limit int) ([]models.PostSummary, error)
}

// CatalogSource lists courses and mock-test series.
type CatalogSource interface {
	Courses(ctx context.Context) ([]apiclient.Course, error)
	MockSeries(ctx context.Context) ([]apiclient.MockSeries, error)
}

// Site groups the presentation page handlers.
type Site struct {
	api     ContentAPI
	catalog CatalogSource
	render  *render.Renderer
}

// New creates the site handler group. catalog may be a nil *apiclient.Catalog,
// in which case the course pages render their empty state.
func New(api ContentAPI, catalog CatalogSource, rn *render.Renderer) *Site {
	if catalog == nil {
		catalog = (*apiclient.Catalog)(nil)
	}
	return &Site{api: api, catalog: catalog, render: rn}
}

// chrome holds the data every page layout shows.
type chrome struct {
	categories []models.Category
	carousel   []models.CarouselItem
}

// loadChrome fetches the header navigation and ticker alongside the page's
// own data. A failure here only degrades the layout.
func (s *Site) loadChrome(ctx context.Context, g *errgroup.Group) *chrome {
	c := &chrome{}
	g.Go(func() error {
		cats, err := s.api.Categories(ctx)
		if err != nil {
			slog.Warn("load header categories failed", "error", err, "request_id", middleware.RequestIDFrom(ctx))
			return nil
		}
		c.categories = cats
		return nil
	})
	g.Go(func() error {
		items, err := s.api.Carousel(ctx, true)
		if err != nil {
			slog.Warn("load carousel failed", "error", err, "request_id", middleware.RequestIDFrom(ctx))
			return nil
		}
		c.carousel = items
		return nil
	})
	return c
}

func (c *chrome) page(title, section string, data map[string]any) *render.PageData {
	return &render.PageData{
		Title:      title,
		Section:    section,
		Categories: c.categories,
		Carousel:   c.carousel,
		Data:       data,
	}
}

// fail renders the 404 page for upstream not-found errors and a 502 error
// page for everything else.
func (s *Site) fail(w http.ResponseWriter, r *http.Request, c *chrome, err error) {
	if errors.Is(err, apiclient.ErrNotFound) {
		s.notFound(w, r, c)
		return
	}

	slog.Error("content api call failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFrom(r.Context()),
	)
	if c == nil {
		c = &chrome{}
	}
	s.render.Page(w, r, http.StatusBadGateway, "error", c.page("Error", "", map[string]any{
		"Message": "We could not load this page right now. Please try again in a moment.",
	}))
}

func (s *Site) notFound(w http.ResponseWriter, r *http.Request, c *chrome) {
	if c == nil {
		c = &chrome{}
	}
	s.render.Page(w, r, http.StatusNotFound, "not_found", c.page("Page not found", "", map[string]any{
		"Path": r.URL.Path,
	}))
}
