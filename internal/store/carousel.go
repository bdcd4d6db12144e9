// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobalert/internal/models"
)

// CarouselStore manages homepage carousel items.
type CarouselStore struct {
	db *sql.DB
}

// NewCarouselStore returns a new CarouselStore.
func NewCarouselStore(db *sql.DB) *CarouselStore {
	return &CarouselStore{db: db}
}

const carouselColumns = `id, text, is_active, created_at`

func scanCarouselItem(scanner interface{ Scan(...any) error }) (*models.CarouselItem, error) {
	var c models.CarouselItem
	if err := scanner.Scan(&c.ID, &c.Text, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns carousel items newest first. When onlyActive is true,
// inactive items are excluded.
func (s *CarouselStore) List(ctx context.Context, onlyActive bool) ([]models.CarouselItem, error) {
	query := `SELECT ` + carouselColumns + ` FROM carousel_items`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list carousel items: %w", err)
	}
	defer rows.Close()

	items := []models.CarouselItem{}
	for rows.Next() {
		c, err := scanCarouselItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carousel item: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a carousel item by ID. Returns nil if not found.
func (s *CarouselStore) FindByID(ctx context.Context, id int64) (*models.CarouselItem, error) {
	c, err := scanCarouselItem(s.db.QueryRowContext(ctx,
		`SELECT `+carouselColumns+` FROM carousel_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find carousel item by id: %w", err)
	}
	return c, nil
}

// Create inserts a carousel item and returns it.
func (s *CarouselStore) Create(ctx context.Context, c *models.CarouselItem) (*models.CarouselItem, error) {
	result, err := scanCarouselItem(s.db.QueryRowContext(ctx, `
		INSERT INTO carousel_items (text, is_active)
		VALUES ($1, $2)
		RETURNING `+carouselColumns,
		c.Text, c.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("create carousel item: %w", err)
	}
	return result, nil
}

// Update writes text and active flag. Returns nil if the item vanished.
func (s *CarouselStore) Update(ctx context.Context, c *models.CarouselItem) (*models.CarouselItem, error) {
	result, err := scanCarouselItem(s.db.QueryRowContext(ctx, `
		UPDATE carousel_items SET text = $1, is_active = $2
		WHERE id = $3
		RETURNING `+carouselColumns,
		c.Text, c.IsActive, c.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update carousel item: %w", err)
	}
	return result, nil
}

// Delete removes a carousel item by ID.
func (s *CarouselStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carousel_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete carousel item: %w", err)
	}
	return nil
}
