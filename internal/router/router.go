// Package router sets up the Content API's HTTP routes and middleware
// chain.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"jobalert/internal/apperr"
	"jobalert/internal/handlers"
	"jobalert/internal/middleware"
)

// Options configures the optional parts of the middleware chain.
type Options struct {
	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string

	// Limiter rate-limits requests per client IP. Nil disables limiting.
	Limiter *middleware.RateLimiter

	// Keys records idempotency keys. Nil disables the idempotency check.
	Keys middleware.KeyStore
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(middleware.APIHeaders))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.IdempotencyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         int((12 * time.Hour).Seconds()),
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, apperr.NotFound("Route %s %s not found", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, apperr.MethodNotAllowed(r.Method))
	})

	// Health check is not rate limited.
	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}
		r.Use(middleware.Idempotency(opts.Keys))

		r.Get("/home", api.Home)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Post("/", api.CreateCategory)
			r.Get("/name/{name}", api.GetCategoryByName)
			r.Get("/slug/{slug}", api.GetCategoryBySlug)
			r.Get("/slug/{slug}/posts", api.GetCategoryPostsBySlug)
			r.Get("/{id}", api.GetCategory)
			r.Put("/{id}", api.UpdateCategory)
			r.Delete("/{id}", api.DeleteCategory)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", api.ListPosts)
			r.Post("/", api.CreatePost)
			r.Get("/search", api.SearchPosts)
			r.Get("/summary", api.PostsSummary)
			r.Get("/latest", api.LatestPosts)
			r.Get("/slug/{slug}", api.GetPostBySlug)
			r.Get("/category/{id}", api.PostsByCategory)
			r.Get("/tag/{name}", api.PostsByTag)
			r.Get("/{id}", api.GetPost)
			r.Put("/{id}", api.UpdatePost)
			r.Delete("/{id}", api.DeletePost)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", api.ListTags)
			r.Post("/", api.CreateTag)
			r.Get("/{id}", api.GetTag)
			r.Delete("/{id}", api.DeleteTag)
		})

		r.Route("/carousel", func(r chi.Router) {
			r.Get("/", api.ListCarousel)
			r.Post("/", api.CreateCarouselItem)
			r.Get("/{id}", api.GetCarouselItem)
			r.Put("/{id}", api.UpdateCarouselItem)
			r.Delete("/{id}", api.DeleteCarouselItem)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
