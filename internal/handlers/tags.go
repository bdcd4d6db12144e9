package handlers

import (
	"errors"
	"net/http"

	"jobalert/internal/apperr"
	"jobalert/internal/models"
	"jobalert/internal/store"
)

// ListTags returns every tag with its post count, by name.
func (a *API) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := a.tags.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tags)
}

// GetTag returns one tag by id.
func (a *API) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := a.findTag(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tag)
}

// CreateTag adds a tag. Names are unique ignoring case.
func (a *API) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in tagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	tag, err := a.tags.Create(r.Context(), in.Name)
	if errors.Is(err, store.ErrDuplicate) {
		err = apperr.Conflict("Tag %q already exists", in.Name)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, tag)
}

// DeleteTag removes a tag and detaches it from every post.
func (a *API) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tag, err := a.findTag(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.tags.Delete(r.Context(), tag.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int64{"id": tag.ID})
}

func (a *API) findTag(r *http.Request) (*models.Tag, error) {
	id, err := urlID(r)
	if err != nil {
		return nil, err
	}
	tag, err := a.tags.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, apperr.NotFound("Tag with ID %d not found", id)
	}
	return tag, nil
}
