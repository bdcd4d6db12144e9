// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"jobalert/internal/database"
	"jobalert/internal/pagination"
	"jobalert/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "jobalert")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "jobalert")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// memObjectStore is an in-memory ObjectStore. Setting failUpload makes
// every upload fail.
type memObjectStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	failUpload bool
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

const memObjectBase = "https://cdn.test/thumbnails/"

func (m *memObjectStore) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if m.failUpload {
		return errors.New("storage offline")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

func (m *memObjectStore) FileURL(key string) string {
	return memObjectBase + key
}

func (m *memObjectStore) ExtractKey(rawURL string) (string, bool) {
	if strings.HasPrefix(rawURL, memObjectBase) {
		return strings.TrimPrefix(rawURL, memObjectBase), true
	}
	return "", false
}

func (m *memObjectStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memObjectStore) has(rawURL string) bool {
	key, ok := m.ExtractKey(rawURL)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.objects[key]
	return exists
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Categories *store.CategoryStore
	Posts      *store.PostStore
	Tags       *store.TagStore
	Carousel   *store.CarouselStore
	Objects    *memObjectStore
	API        *API
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	env := &testEnv{
		DB:         db,
		Categories: store.NewCategoryStore(db),
		Posts:      store.NewPostStore(db),
		Tags:       store.NewTagStore(db),
		Carousel:   store.NewCarouselStore(db),
		Objects:    newMemObjectStore(),
	}
	env.API = NewAPI(env.Categories, env.Posts, env.Tags, env.Carousel, env.Objects)
	return env
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// call runs h with an optional JSON body. params are chi URL parameters as
// alternating keys and values.
func call(t *testing.T, h http.HandlerFunc, method, target string, body any, params ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

// response is the decoded success envelope.
type response[T any] struct {
	Data T                `json:"data"`
	Meta *pagination.Meta `json:"meta"`
}

// decode unmarshals a success envelope, failing the test on a non-2xx.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) response[T] {
	t.Helper()
	if rr.Code < 200 || rr.Code > 299 {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var resp response[T]
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rr.Body.String())
	}
	return resp
}

// errorBody is the decoded error response.
type errorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v\n%s", err, rr.Body.String())
	}
	return body
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// uniqueWord returns a random capitalised word made only of letters.
func uniqueWord() string {
	word := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'g' + (r - '0')
		}
		return r
	}, strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return strings.ToUpper(word[:1]) + word[1:]
}

// cleanCategory removes a category after the test.
func cleanCategory(t *testing.T, db *sql.DB, id int64) {
	t.Helper()
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", id) })
}

// cleanPost removes a post and its associations after the test.
func cleanPost(t *testing.T, db *sql.DB, id int64) {
	t.Helper()
	t.Cleanup(func() {
		db.Exec("DELETE FROM post_tags WHERE post_id = $1", id)
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	})
}

// cleanTag removes a tag and its associations after the test.
func cleanTag(t *testing.T, db *sql.DB, id int64) {
	t.Helper()
	t.Cleanup(func() {
		db.Exec("DELETE FROM post_tags WHERE tag_id = $1", id)
		db.Exec("DELETE FROM tags WHERE id = $1", id)
	})
}

// cleanCarouselItem removes a carousel item after the test.
func cleanCarouselItem(t *testing.T, db *sql.DB, id int64) {
	t.Helper()
	t.Cleanup(func() { db.Exec("DELETE FROM carousel_items WHERE id = $1", id) })
}
