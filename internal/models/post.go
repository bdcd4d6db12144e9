// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// BodyFormat tells the site how to render a post body.
type BodyFormat string

const (
	BodyFormatHTML     BodyFormat = "html"
	BodyFormatMarkdown BodyFormat = "markdown"
)

// Valid reports whether f is a known body format.
func (f BodyFormat) Valid() bool {
	return f == BodyFormatHTML || f == BodyFormatMarkdown
}

// Post is a full article including its body.
type Post struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	Body         string     `json:"body"`
	BodyFormat   BodyFormat `json:"body_format"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	CategoryID   *int64     `json:"category_id"`
	PublishedAt  *time.Time `json:"published_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Category *CategoryRef `json:"category"`
	Tags     []TagRef     `json:"tags"`
}

// IsPublished returns true if the post has a publish time that is not in
// the future.
func (p *Post) IsPublished(now time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// TagIDs returns the ids of the tags attached to the post.
func (p *Post) TagIDs() []int64 {
	ids := make([]int64, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// PostSummary is the list shape of a post. It never carries the body.
type PostSummary struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	CategoryID   *int64     `json:"category_id"`
	CategoryName *string    `json:"category_name"`
	Tags         []TagRef   `json:"tags"`
	PublishedAt  *time.Time `json:"published_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
