// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the entities shared by the store, the JSON API
// handlers and the presentation site.
package models

import "time"

// Category groups posts. A post belongs to at most one category; deleting a
// category leaves its posts uncategorised.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	Slug      string `json:"slug"`
	PostCount int    `json:"post_count"`
}

// CategoryRef is the reduced category shape embedded in posts.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategorySummary is one homepage card: a category and its latest posts.
type CategorySummary struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Slug  string        `json:"slug"`
	Posts []PostSummary `json:"posts"`
}
