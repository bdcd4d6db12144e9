// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobalert/internal/middleware"
	"jobalert/web"
)

// NewRouter wires the site pages, the static assets and the shared
// middleware chain. limiter may be nil.
func NewRouter(s *Site, limiter *middleware.RateLimiter) (chi.Router, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(middleware.SiteHeaders))

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return nil, err
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
	r.Get("/health", Health)

	r.NotFound(s.NotFound)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Get("/", s.Home)
		r.Get("/category/{slug}", s.Category)
		r.Get("/posts/{slug}", s.Post)
		r.Get("/tag/{name}", s.Tag)
		r.Get("/search", s.Search)
		r.Get("/courses", s.Courses)
		r.Get("/mock-tests", s.MockTests)
	})

	return r, nil
}
