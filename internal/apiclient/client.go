// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apiclient is the presentation site's typed client for the Content
// API and for the optional course catalog service.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobalert/internal/middleware"
	"jobalert/internal/models"
	"jobalert/internal/pagination"
)

// DefaultTimeout bounds a single call to an upstream service.
const DefaultTimeout = 10 * time.Second

// maxResponseBody caps how much of an upstream response is read.
const maxResponseBody = 8 << 20

// ErrNotFound is returned (wrapped in an *Error) when the upstream answers 404.
var ErrNotFound = errors.New("not found")

// Error describes a non-2xx upstream response. Message carries the API's
// own "message" field when the body had one.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Unwrap lets callers test for ErrNotFound with errors.Is.
func (e *Error) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// PostPage is one page of post summaries.
type PostPage struct {
	Posts []models.PostSummary
	Meta  pagination.Meta
}

// CategoryPage is a category together with one page of its posts.
type CategoryPage struct {
	Category models.Category
	Posts    []models.PostSummary
	Meta     pagination.Meta
}

// Client calls the Content API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Home fetches the homepage aggregate.
func (c *Client) Home(ctx context.Context) (*models.Home, error) {
	var home models.Home
	if err := getData(ctx, c.http, c.baseURL, "/home", nil, &home); err != nil {
		return nil, err
	}
	return &home, nil
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	raw, err := get(ctx, c.http, c.baseURL, "/categories", nil)
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[models.Category](raw)
	return list, err
}

// Carousel lists carousel items, optionally only the active ones.
func (c *Client) Carousel(ctx context.Context, onlyActive bool) ([]models.CarouselItem, error) {
	q := url.Values{}
	if onlyActive {
		q.Set("onlyActive", "true")
	}
	raw, err := get(ctx, c.http, c.baseURL, "/carousel", q)
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[models.CarouselItem](raw)
	return list, err
}

// CategoryPosts resolves a category slug and fetches one page of its posts.
func (c *Client) CategoryPosts(ctx context.Context, slug string, page, limit int) (*CategoryPage, error) {
	raw, err := get(ctx, c.http, c.baseURL, "/categories/slug/"+url.PathEscape(slug)+"/posts", pageQuery(page, limit))
	if err != nil {
		return nil, err
	}

	var body struct {
		Category models.Category      `json:"category"`
		Data     []models.PostSummary `json:"data"`
		Meta     *pagination.Meta     `json:"meta"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode category posts: %w", err)
	}

	out := &CategoryPage{Category: body.Category, Posts: body.Data}
	if body.Meta != nil {
		out.Meta = *body.Meta
	} else {
		out.Meta = singlePage(len(body.Data))
	}
	if out.Posts == nil {
		out.Posts = []models.PostSummary{}
	}
	return out, nil
}

// TagPosts fetches one page of posts carrying the named tag.
func (c *Client) TagPosts(ctx context.Context, name string, page, limit int) (*PostPage, error) {
	raw, err := get(ctx, c.http, c.baseURL, "/posts/tag/"+url.PathEscape(name), pageQuery(page, limit))
	if err != nil {
		return nil, err
	}
	posts, meta, err := decodeList[models.PostSummary](raw)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Meta: meta}, nil
}

// Post fetches a full post by slug.
func (c *Client) Post(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := getData(ctx, c.http, c.baseURL, "/posts/slug/"+url.PathEscape(slug), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Search runs the global post search. A blank query never hits the API.
func (c *Client) Search(ctx context.Context, q string, limit int) ([]models.PostSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.PostSummary{}, nil
	}
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	raw, err := get(ctx, c.http, c.baseURL, "/posts/search", query)
	if err != nil {
		return nil, err
	}
	posts, _, err := decodeList[models.PostSummary](raw)
	return posts, err
}

// Health reports whether the API answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	_, err := get(ctx, c.http, c.baseURL, "/health", nil)
	return err
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// get performs a GET and returns the raw body of a 2xx response.
func get(ctx context.Context, client *http.Client, baseURL, path string, query url.Values) ([]byte, error) {
	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := middleware.RequestIDFrom(ctx); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromBody(resp.StatusCode, body)
	}
	return body, nil
}

// getData performs a GET and decodes the "data" member of the envelope
// into out. A body without an envelope is decoded as-is.
func getData(ctx context.Context, client *http.Client, baseURL, path string, query url.Values, out any) error {
	raw, err := get(ctx, client, baseURL, path, query)
	if err != nil {
		return err
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// decodeList accepts either {"data": [...], "meta": {...}} or a bare JSON
// array. A missing meta describes everything as a single page.
func decodeList[T any](raw []byte) ([]T, pagination.Meta, error) {
	trimmed := bytes.TrimSpace(raw)

	var items []T
	var meta *pagination.Meta

	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("decode list: %w", err)
		}
	} else {
		var env struct {
			Data []T              `json:"data"`
			Meta *pagination.Meta `json:"meta"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("decode list: %w", err)
		}
		items, meta = env.Data, env.Meta
	}

	if items == nil {
		items = []T{}
	}
	if meta == nil {
		return items, singlePage(len(items)), nil
	}
	return items, *meta, nil
}

func singlePage(n int) pagination.Meta {
	m := pagination.Meta{Total: n, Page: 1, Limit: n}
	if n > 0 {
		m.TotalPages = 1
	}
	return m
}

// errorFromBody builds an *Error, preferring the upstream message.
func errorFromBody(status int, body []byte) *Error {
	e := &Error{Status: status}

	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		e.Message = payload.Message
		e.Code = payload.Code
		return e
	}

	e.Message = fmt.Sprintf("HTTP error! status: %d", status)
	return e
}
