package handlers

import (
	"net/http"
	"strconv"

	"jobalert/internal/apperr"
	"jobalert/internal/models"
)

// ListCarousel returns carousel items, newest first. With
// ?onlyActive=true inactive items are left out.
func (a *API) ListCarousel(w http.ResponseWriter, r *http.Request) {
	onlyActive, _ := strconv.ParseBool(r.URL.Query().Get("onlyActive"))
	items, err := a.carousel.List(r.Context(), onlyActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

// GetCarouselItem returns one carousel item by id.
func (a *API) GetCarouselItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.findCarouselItem(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, item)
}

// CreateCarouselItem adds a carousel item; it is active unless is_active
// is false.
func (a *API) CreateCarouselItem(w http.ResponseWriter, r *http.Request) {
	var in carouselInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.validate(true); err != nil {
		writeError(w, r, err)
		return
	}

	item := &models.CarouselItem{Text: *in.Text, IsActive: true}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}

	created, err := a.carousel.Create(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

// UpdateCarouselItem changes the supplied fields of a carousel item.
func (a *API) UpdateCarouselItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.findCarouselItem(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in carouselInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.validate(false); err != nil {
		writeError(w, r, err)
		return
	}

	if in.Text != nil {
		item.Text = *in.Text
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}

	updated, err := a.carousel.Update(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if updated == nil {
		writeError(w, r, apperr.NotFound("Carousel item with ID %d not found", item.ID))
		return
	}
	writeData(w, http.StatusOK, updated)
}

// DeleteCarouselItem removes a carousel item.
func (a *API) DeleteCarouselItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.findCarouselItem(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.carousel.Delete(r.Context(), item.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"id": item.ID})
}

func (a *API) findCarouselItem(r *http.Request) (*models.CarouselItem, error) {
	id, err := urlID(r)
	if err != nil {
		return nil, err
	}
	item, err := a.carousel.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("Carousel item with ID %d not found", id)
	}
	return item, nil
}
