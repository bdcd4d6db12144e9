// Package main is the entry point for the presentation site. It renders
// HTML pages from the Content API and the optional course catalog.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobalert/internal/apiclient"
	"jobalert/internal/config"
	"jobalert/internal/middleware"
	"jobalert/internal/render"
	"jobalert/internal/site"
)

// Per-IP page budget. Every page fans out to several API calls.
const (
	siteRPS   = 10
	siteBurst = 30
)

func main() {
	cfg, err := config.LoadSite()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.LogFormat, cfg.IsDev()))
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"api", cfg.APIURL,
		"catalog", cfg.CatalogAPIURL != "",
	)

	renderer, err := render.New(cfg.SiteName)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	client := apiclient.New(cfg.APIURL, apiclient.DefaultTimeout)
	catalog := apiclient.NewCatalog(cfg.CatalogAPIURL, apiclient.DefaultTimeout)
	if catalog == nil {
		slog.Warn("catalog not configured, course pages render empty")
	}

	// The API may still be starting; pages degrade until it answers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Health(pingCtx); err != nil {
		slog.Warn("content api not reachable yet", "error", err)
	}
	pingCancel()

	limiter := middleware.NewRateLimiter(siteRPS, siteBurst)
	defer limiter.Stop()

	r, err := site.NewRouter(site.New(client, catalog, renderer), limiter)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("site starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("site failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("site forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("site stopped gracefully")
}

func newLogger(w io.Writer, format string, dev bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if dev {
		opts.Level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
