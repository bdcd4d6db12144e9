package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobalert/internal/apperr"
	"jobalert/internal/models"
	"jobalert/internal/pagination"
	"jobalert/internal/store"
)

// ListCategories returns every category with its post count, by name.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cats)
}

// GetCategory returns one category by id.
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := a.findCategory(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cat)
}

// GetCategoryByName returns the category whose name matches exactly.
func (a *API) GetCategoryByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cat, err := a.categories.FindByName(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cat == nil {
		writeError(w, r, apperr.NotFound("Category with name %q not found", name))
		return
	}
	writeData(w, http.StatusOK, cat)
}

// GetCategoryBySlug resolves a URL slug such as "admit-cards" to its
// category.
func (a *API) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	cat, err := a.categoryFromSlug(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cat)
}

// GetCategoryPostsBySlug returns the category for a slug together with one
// page of its posts.
func (a *API) GetCategoryPostsBySlug(w http.ResponseWriter, r *http.Request) {
	cat, err := a.categoryFromSlug(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := pagination.FromRequest(r, pagination.DefaultLimit)
	page, err := a.posts.List(r.Context(), store.PostFilter{CategoryID: &cat.ID}, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Category *models.Category     `json:"category"`
		Data     []models.PostSummary `json:"data"`
		Meta     pagination.Meta      `json:"meta"`
	}{cat, page.Posts, pagination.NewMeta(p, page.Total)})
}

// CreateCategory adds a category. Names are unique ignoring case.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.normalize()
	if err := in.validate(true); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := a.categories.Create(r.Context(), &models.Category{
		Name:        *in.Name,
		Description: in.Description.Value,
	})
	if err != nil {
		writeError(w, r, categoryConflict(err, *in.Name))
		return
	}
	writeData(w, http.StatusCreated, created)
}

// UpdateCategory changes the supplied fields of a category.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := a.findCategory(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.normalize()
	if err := in.validate(false); err != nil {
		writeError(w, r, err)
		return
	}

	if in.Name != nil {
		cat.Name = *in.Name
	}
	if in.Description.Set {
		cat.Description = in.Description.Value
	}

	updated, err := a.categories.Update(r.Context(), cat)
	if err != nil {
		writeError(w, r, categoryConflict(err, cat.Name))
		return
	}
	if updated == nil {
		writeError(w, r, apperr.NotFound("Category with ID %d not found", cat.ID))
		return
	}
	writeData(w, http.StatusOK, updated)
}

// DeleteCategory removes a category. Its posts stay, uncategorised.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := a.findCategory(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.categories.Delete(r.Context(), cat.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"id": cat.ID})
}

// findCategory loads the category named by the {id} route parameter.
func (a *API) findCategory(r *http.Request) (*models.Category, error) {
	id, err := urlID(r)
	if err != nil {
		return nil, err
	}
	cat, err := a.categories.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("Category with ID %d not found", id)
	}
	return cat, nil
}

// categoryFromSlug loads the category for the {slug} route parameter.
func (a *API) categoryFromSlug(r *http.Request) (*models.Category, error) {
	categorySlug := chi.URLParam(r, "slug")
	cat, err := a.categories.FindBySlug(r.Context(), categorySlug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, apperr.NotFound("Category with slug %q not found", categorySlug)
	}
	return cat, nil
}

func categoryConflict(err error, name string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict("Category %q already exists", name)
	}
	return err
}
