// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the Content API's HTTP handlers. Every
// response is JSON: {"data": ...} on success, {"message", "code"} on error.
package handlers

import (
	"jobalert/internal/store"
)

// API groups the Content API handlers and their dependencies.
type API struct {
	categories *store.CategoryStore
	posts      *store.PostStore
	tags       *store.TagStore
	carousel   *store.CarouselStore
	objects    ObjectStore // nil when object storage is not configured
}

// NewAPI creates the Content API handler group. objects may be nil, in
// which case thumbnail uploads answer 503.
func NewAPI(
	categoryStore *store.CategoryStore,
	postStore *store.PostStore,
	tagStore *store.TagStore,
	carouselStore *store.CarouselStore,
	objects ObjectStore,
) *API {
	return &API{
		categories: categoryStore,
		posts:      postStore,
		tags:       tagStore,
		carousel:   carouselStore,
		objects:    objects,
	}
}
