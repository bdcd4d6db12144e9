package handlers

import (
	"net/http"

	"jobalert/internal/database"
	"jobalert/internal/models"
	"jobalert/internal/pagination"
	"jobalert/internal/store"
)

// Featured sections of the home page.
const (
	latestJobsCategory = "Latest Jobs"
	yojnaCategory      = "Yojna"

	homeLatestLimit  = 8
	homeSummaryLimit = 15
	homeYojnaLimit   = 12
)

// Home returns everything the site's front page needs in one response. A
// featured category that does not exist produces an empty section.
func (a *API) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	home := models.Home{}

	var err error
	if home.Categories, err = a.categories.List(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	if home.LatestJobs, err = a.posts.Latest(ctx, latestJobsCategory, homeLatestLimit); err != nil {
		writeError(w, r, err)
		return
	}
	if home.Summary, err = a.posts.Summary(ctx, database.DefaultCategories, homeSummaryLimit); err != nil {
		writeError(w, r, err)
		return
	}

	home.Yojna = []models.PostSummary{}
	yojna, err := a.categories.FindByNameFold(ctx, yojnaCategory)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if yojna != nil {
		page, err := a.posts.List(ctx, store.PostFilter{CategoryID: &yojna.ID}, pagination.New(1, homeYojnaLimit, homeYojnaLimit))
		if err != nil {
			writeError(w, r, err)
			return
		}
		home.Yojna = page.Posts
	}

	if home.Carousel, err = a.carousel.List(ctx, true); err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, home)
}
