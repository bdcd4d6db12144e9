package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// DefaultCategories are the sections the homepage features. They are
// created on first start in development.
var DefaultCategories = []string{
	"Latest Jobs",
	"Yojna",
	"Results",
	"Admit Cards",
	"Documents",
	"Answer Keys",
}

// Seed populates the database with initial development data: the default
// categories and a welcome carousel item. It does nothing when any category
// already exists.
func Seed(db *sql.DB) error {
	// Check if any categories exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, name := range DefaultCategories {
		// ON CONFLICT guards against a concurrent seed from another process.
		if _, err := tx.Exec(`
			INSERT INTO categories (name) VALUES ($1)
			ON CONFLICT ((LOWER(name))) DO NOTHING
		`, name); err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO carousel_items (text, is_active) VALUES ($1, TRUE)
	`, "Welcome! Fresh government job alerts are posted here every day."); err != nil {
		return fmt.Errorf("seed insert carousel item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default categories", "count", len(DefaultCategories))
	return nil
}
