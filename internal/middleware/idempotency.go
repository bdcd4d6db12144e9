// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"jobalert/internal/apperr"
	"jobalert/internal/cache"
)

// IdempotencyHeader is the request header naming a client idempotency key.
const IdempotencyHeader = "X-Idempotency-Key"

// KeyStore records idempotency keys. *cache.IdempotencyStore implements it.
type KeyStore interface {
	Reserve(ctx context.Context, key string) (cache.KeyState, error)
	Complete(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// Idempotency rejects repeated POST and PUT requests that carry the same
// X-Idempotency-Key. A key is held while its request runs, kept after a
// 2xx response, and released after any other outcome so the client can
// retry. Requests without the header, and all requests when keys is nil,
// pass through untouched. A failing key store never blocks a request.
func Idempotency(keys KeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if keys == nil || key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
				next.ServeHTTP(w, r)
				return
			}

			// Scope keys to the route so one key cannot collide across resources.
			scoped := r.Method + " " + r.URL.Path + " " + key

			state, err := keys.Reserve(r.Context(), scoped)
			if err != nil {
				slog.Warn("idempotency reserve failed", "error", err, "request_id", RequestIDFrom(r.Context()))
				next.ServeHTTP(w, r)
				return
			}

			switch state {
			case cache.KeyInProgress:
				apperr.Write(w, apperr.InProgress("A request with this idempotency key is already being processed"))
				return
			case cache.KeyDone:
				apperr.Write(w, apperr.Conflict("A request with this idempotency key was already processed"))
				return
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			completed := false
			defer func() {
				// The request context may already be cancelled; finish the
				// bookkeeping regardless. A panicking handler releases the key.
				ctx := context.WithoutCancel(r.Context())
				var err error
				if completed && wrapped.statusCode >= 200 && wrapped.statusCode < 300 {
					err = keys.Complete(ctx, scoped)
				} else {
					err = keys.Release(ctx, scoped)
				}
				if err != nil {
					slog.Warn("idempotency update failed", "error", err, "status", wrapped.statusCode)
				}
			}()

			next.ServeHTTP(wrapped, r)
			completed = true
		})
	}
}
