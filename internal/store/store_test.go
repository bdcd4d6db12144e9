// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"jobalert/internal/database"
	"jobalert/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "jobalert")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "jobalert")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniqueWord returns a random capitalised word made only of letters, so
// names built from it survive the slug round trip unchanged.
func uniqueWord() string {
	word := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'g' + (r - '0')
		}
		return r
	}, strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return strings.ToUpper(word[:1]) + word[1:]
}

// uniqueName returns a name that no other test run will produce.
func uniqueName(prefix string) string {
	return prefix + " " + uniqueWord()
}

// testCategory creates a throwaway category and removes it after the test.
func testCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{Name: name})
	if err != nil {
		t.Fatalf("create test category: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, c.ID) })
	return c
}

// testTag creates a throwaway tag and removes it after the test.
func testTag(t *testing.T, db *sql.DB, name string) *models.Tag {
	t.Helper()
	tag, err := NewTagStore(db).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create test tag: %v", err)
	}
	t.Cleanup(func() { cleanTags(t, db, tag.ID) })
	return tag
}

// testPost creates a post with a unique slug and removes it after the test.
func testPost(t *testing.T, db *sql.DB, p *models.Post, tagIDs ...int64) *models.Post {
	t.Helper()
	if p.Slug == "" {
		p.Slug = "test-post-" + uuid.NewString()[:8]
	}
	created, err := NewPostStore(db).Create(context.Background(), p, tagIDs)
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	// Registered after the category cleanup, so it runs first.
	t.Cleanup(func() { cleanPosts(t, db, created.ID) })
	return created
}

// cleanPosts removes test posts and their associations. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM post_tags WHERE post_id = $1", id)
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	}
}

// cleanCategories removes test categories by id. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM categories WHERE id = $1", id)
	}
}

// cleanTags removes test tags and their associations. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM post_tags WHERE tag_id = $1", id)
		db.Exec("DELETE FROM tags WHERE id = $1", id)
	}
}

// cleanCarousel removes test carousel items by id. Call in t.Cleanup().
func cleanCarousel(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM carousel_items WHERE id = $1", id)
	}
}
