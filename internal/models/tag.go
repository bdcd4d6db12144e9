// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Tag is a free-form label attached to posts through post_tags.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	PostCount int       `json:"post_count"`
}

// TagRef is the reduced tag shape embedded in posts.
type TagRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
