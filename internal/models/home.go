// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Home is everything the site's front page shows, fetched in one request.
// Sections whose category does not exist are empty, never missing.
type Home struct {
	Categories []Category        `json:"categories"`
	LatestJobs []PostSummary     `json:"latestJobs"`
	Summary    []CategorySummary `json:"summary"`
	Yojna      []PostSummary     `json:"yojna"`
	Carousel   []CarouselItem    `json:"carousel"`
}
