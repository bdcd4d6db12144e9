// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jobalert/internal/apperr"
	"jobalert/internal/middleware"
	"jobalert/internal/pagination"
	"jobalert/internal/store"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// envelope is the success response shape.
type envelope struct {
	Data any              `json:"data"`
	Meta *pagination.Meta `json:"meta,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeData wraps data in {"data": ...}.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data})
}

// writePage wraps a page of results in {"data": ..., "meta": ...}.
func writePage(w http.ResponseWriter, data any, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, envelope{Data: data, Meta: &meta})
}

// writeError maps err onto an AppError and writes it. Store sentinels become
// client errors; anything unrecognised is a 500 whose cause is logged but
// never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		err = apperr.Conflict("A record with the same unique value already exists")
	case errors.Is(err, store.ErrInvalidReference):
		err = apperr.BadRequest("Referenced category or tag does not exist")
	}

	ae := apperr.As(err)
	if ae.HTTPStatus >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", ae.Cause,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFrom(r.Context()),
		)
	}
	apperr.Write(w, ae)
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.BadRequest("Invalid ID %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.TooLarge("Request body is too large")
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("Request body is empty")
		default:
			return apperr.BadRequest("Invalid JSON body: %v", err)
		}
	}
	return nil
}
