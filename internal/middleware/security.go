// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// HeaderSet is a fixed set of response headers applied by SecureHeaders.
type HeaderSet map[string]string

// baseHeaders go on every response of both servers.
var baseHeaders = HeaderSet{
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "interest-cohort=(), camera=(), microphone=(), geolocation=()",
}

// APIHeaders suit the JSON Content API: nothing it serves should ever be
// framed or render as a document.
var APIHeaders = with(baseHeaders, HeaderSet{
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
})

// SiteHeaders suit the rendered pages. Thumbnails may live on an external
// object store, and highlighted code blocks carry inline style attributes.
var SiteHeaders = with(baseHeaders, HeaderSet{
	"X-Frame-Options":            "SAMEORIGIN",
	"Cross-Origin-Opener-Policy": "same-origin",
	"Content-Security-Policy": "default-src 'self'; img-src 'self' data: https:; " +
		"style-src 'self' 'unsafe-inline'; script-src 'none'; frame-ancestors 'self'",
	// The legacy XSS auditor is disabled in favour of escaping at render time.
	"X-XSS-Protection": "0",
})

func with(base, extra HeaderSet) HeaderSet {
	out := make(HeaderSet, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// SecureHeaders returns middleware that sets every header in set on each
// response before the handler runs.
func SecureHeaders(set HeaderSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range set {
				h.Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}
