package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/apperr"
	"jobalert/internal/models"
	"jobalert/internal/slug"
)

// createCategory creates a category through the handler and schedules its
// removal.
func createCategory(t *testing.T, env *testEnv, name string) models.Category {
	t.Helper()
	rr := call(t, env.API.CreateCategory, http.MethodPost, "/categories", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	cat := decode[models.Category](t, rr).Data
	cleanCategory(t, env.DB, cat.ID)
	return cat
}

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	name := "Current Affairs " + uniqueWord()

	cat := createCategory(t, env, name)
	assert.Equal(t, name, cat.Name)
	assert.Equal(t, slug.Generate(name), cat.Slug)

	rr := call(t, env.API.GetCategory, http.MethodGet, "/categories/x", nil, "id", itoa(cat.ID))
	assert.Equal(t, name, decode[models.Category](t, rr).Data.Name)

	rr = call(t, env.API.UpdateCategory, http.MethodPut, "/categories/x",
		map[string]any{"description": "Daily GK"}, "id", itoa(cat.ID))
	updated := decode[models.Category](t, rr).Data
	assert.Equal(t, name, updated.Name, "name is kept when not supplied")
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Daily GK", *updated.Description)

	rr = call(t, env.API.UpdateCategory, http.MethodPut, "/categories/x",
		map[string]any{"description": nil}, "id", itoa(cat.ID))
	assert.Nil(t, decode[models.Category](t, rr).Data.Description, "explicit null clears the description")

	rr = call(t, env.API.DeleteCategory, http.MethodDelete, "/categories/x", nil, "id", itoa(cat.ID))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, env.API.GetCategory, http.MethodGet, "/categories/x", nil, "id", itoa(cat.ID))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Category with ID "+itoa(cat.ID)+" not found", decodeError(t, rr).Message)
}

func TestCreateCategoryValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := call(t, env.API.CreateCategory, http.MethodPost, "/categories", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, apperr.CodeValidation, body.Code)
	assert.Contains(t, body.Details, "name")

	rr = call(t, env.API.CreateCategory, http.MethodPost, "/categories",
		map[string]any{"name": strings.Repeat("n", 101)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	env := newTestEnv(t)
	name := "Results " + uniqueWord()
	createCategory(t, env, name)

	rr := call(t, env.API.CreateCategory, http.MethodPost, "/categories", map[string]any{"name": strings.ToUpper(name)})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apperr.CodeConflict, decodeError(t, rr).Code)
}

func TestCategoryMutationsMissing(t *testing.T) {
	env := newTestEnv(t)

	rr := call(t, env.API.UpdateCategory, http.MethodPut, "/categories/x", map[string]any{"name": "X"}, "id", "999999999")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(t, env.API.DeleteCategory, http.MethodDelete, "/categories/x", nil, "id", "999999999")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(t, env.API.GetCategory, http.MethodGet, "/categories/x", nil, "id", "nope")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCategoryByNameAndSlug(t *testing.T) {
	env := newTestEnv(t)
	word := uniqueWord()
	name := "Haryana " + word
	cat := createCategory(t, env, name)

	rr := call(t, env.API.GetCategoryByName, http.MethodGet, "/", nil, "name", name)
	assert.Equal(t, cat.ID, decode[models.Category](t, rr).Data.ID)

	rr = call(t, env.API.GetCategoryByName, http.MethodGet, "/", nil, "name", strings.ToLower(name))
	assert.Equal(t, http.StatusNotFound, rr.Code, "name lookup is exact")

	rr = call(t, env.API.GetCategoryBySlug, http.MethodGet, "/", nil, "slug", slug.Generate(name))
	assert.Equal(t, cat.ID, decode[models.Category](t, rr).Data.ID)

	rr = call(t, env.API.GetCategoryBySlug, http.MethodGet, "/", nil, "slug", "no-such-category-"+strings.ToLower(word))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCategoryPostsBySlugPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := createCategory(t, env, "Admit "+uniqueWord())

	for i := 0; i < 25; i++ {
		p, err := env.Posts.Create(ctx, &models.Post{
			Title: "Card", Slug: "card-" + strings.ToLower(uniqueWord()), CategoryID: &cat.ID,
		}, nil)
		require.NoError(t, err)
		cleanPost(t, env.DB, p.ID)
	}

	rr := call(t, env.API.GetCategoryPostsBySlug, http.MethodGet, "/?page=2&limit=20", nil, "slug", cat.Slug)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Category models.Category      `json:"category"`
		Data     []models.PostSummary `json:"data"`
		Meta     struct {
			Total      int `json:"total"`
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalPages int `json:"totalPages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, cat.ID, body.Category.ID)
	assert.Len(t, body.Data, 5)
	assert.Equal(t, 25, body.Meta.Total)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 20, body.Meta.Limit)
	assert.Equal(t, 2, body.Meta.TotalPages)
}

func TestDeleteCategoryKeepsPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cat := createCategory(t, env, "Documents "+uniqueWord())

	p, err := env.Posts.Create(ctx, &models.Post{Title: "Doc", Slug: "doc-" + strings.ToLower(uniqueWord()), CategoryID: &cat.ID}, nil)
	require.NoError(t, err)
	cleanPost(t, env.DB, p.ID)

	rr := call(t, env.API.DeleteCategory, http.MethodDelete, "/", nil, "id", itoa(cat.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, env.API.GetPost, http.MethodGet, "/", nil, "id", itoa(p.ID))
	post := decode[models.Post](t, rr).Data
	assert.Nil(t, post.CategoryID, "post survives uncategorised")
}
