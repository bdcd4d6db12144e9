// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagination parses page/limit query parameters and builds the
// metadata block returned with every paginated list.
package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	// MaxPage caps the page number so the SQL offset never overflows.
	MaxPage = math.MaxInt32 / MaxLimit
	// DefaultLimit is the page size used when a call site has no default of its own.
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
	// DefaultPage is the first page (1-indexed).
	DefaultPage = 1
)

// Params holds a normalised page number and page size.
type Params struct {
	Page  int
	Limit int
}

// New normalises page and limit: page below 1 becomes 1, page above
// MaxPage is clamped, limit below 1 becomes defaultLimit, and limit above
// MaxLimit is clamped.
func New(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// FromRequest reads the "page" and "limit" query parameters. Missing or
// non-numeric values fall back to page 1 and defaultLimit.
func FromRequest(r *http.Request, defaultLimit int) Params {
	q := r.URL.Query()
	return New(ParseInt(q.Get("page"), DefaultPage), ParseInt(q.Get("limit"), defaultLimit), defaultLimit)
}

// LimitFromRequest reads only the "limit" query parameter, for endpoints
// that return a bounded list without pages.
func LimitFromRequest(r *http.Request, defaultLimit int) int {
	return New(DefaultPage, ParseInt(r.URL.Query().Get("limit"), defaultLimit), defaultLimit).Limit
}

// Offset returns the SQL OFFSET for the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block of a list response.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewMeta builds the metadata for a page. TotalPages is ceil(total/limit),
// which is 0 for an empty collection.
func NewMeta(p Params, total int) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}

// ParseInt parses s as a base-10 integer, returning fallback when s is
// empty or malformed.
func ParseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
