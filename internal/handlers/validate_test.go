package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobalert/internal/apperr"
)

func ptr[T any](v T) *T { return &v }

// fieldErrors returns the per-field messages of a validation error.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var ae *apperr.AppError
	require.True(t, errors.As(err, &ae), "want *apperr.AppError, got %T", err)
	require.Equal(t, apperr.CodeValidation, ae.Code)
	return ae.Details
}

func TestCategoryInputValidate(t *testing.T) {
	t.Run("create requires name", func(t *testing.T) {
		in := categoryInput{}
		assert.Contains(t, fieldErrors(t, in.validate(true)), "name")
	})

	t.Run("update allows missing name", func(t *testing.T) {
		in := categoryInput{}
		assert.NoError(t, in.validate(false))
	})

	t.Run("blank name rejected on update", func(t *testing.T) {
		in := categoryInput{Name: ptr("   ")}
		in.normalize()
		assert.Contains(t, fieldErrors(t, in.validate(false)), "name")
	})

	t.Run("name too long", func(t *testing.T) {
		in := categoryInput{Name: ptr(strings.Repeat("a", maxCategoryNameLen+1))}
		assert.Contains(t, fieldErrors(t, in.validate(true)), "name")
	})

	t.Run("name at limit counts runes", func(t *testing.T) {
		in := categoryInput{Name: ptr(strings.Repeat("ह", maxCategoryNameLen))}
		assert.NoError(t, in.validate(true))
	})

	t.Run("description too long", func(t *testing.T) {
		in := categoryInput{Name: ptr("Results")}
		in.Description.set(ptr(strings.Repeat("d", maxDescriptionLen+1)))
		assert.Contains(t, fieldErrors(t, in.validate(true)), "description")
	})
}

func TestPostInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		in     postInput
		create bool
		field  string
	}{
		{name: "missing title on create", in: postInput{}, create: true, field: "title"},
		{name: "blank title", in: postInput{Title: ptr("")}, field: "title"},
		{name: "bad body format", in: postInput{Title: ptr("x"), BodyFormat: ptr("rtf")}, create: true, field: "body_format"},
		{name: "bad thumbnail url", in: postInput{Title: ptr("x"), ThumbnailURL: nullable[string]{Set: true, Value: ptr("not a url")}}, create: true, field: "thumbnail_url"},
		{name: "negative category", in: postInput{CategoryID: nullable[int64]{Set: true, Value: ptr(int64(-4))}}, field: "category_id"},
		{name: "negative tag", in: postInput{Tags: &[]int64{3, -1}}, field: "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, fieldErrors(t, tt.in.validate(tt.create)), tt.field)
		})
	}

	t.Run("valid full input", func(t *testing.T) {
		in := postInput{
			Title:      ptr("HSSC CET Result 2026"),
			BodyFormat: ptr("markdown"),
			Tags:       &[]int64{1, 2},
		}
		in.ThumbnailURL.set(ptr("https://cdn.example.com/a.jpg"))
		assert.NoError(t, in.validate(true))
	})

	t.Run("empty update is valid", func(t *testing.T) {
		in := postInput{}
		assert.NoError(t, in.validate(false))
	})
}

func TestPostInputNormalize(t *testing.T) {
	in := postInput{Title: ptr("  Title  "), BodyFormat: ptr(" html ")}
	in.ThumbnailURL.set(ptr("  "))
	in.normalize()

	assert.Equal(t, "Title", *in.Title)
	assert.Equal(t, "html", *in.BodyFormat)
	assert.True(t, in.ThumbnailURL.Set)
	assert.Nil(t, in.ThumbnailURL.Value, "blank thumbnail clears it")
}

func TestNullableJSON(t *testing.T) {
	var in postInput
	require.NoError(t, json.Unmarshal([]byte(`{"category_id": null, "tags": []}`), &in))

	assert.True(t, in.CategoryID.Set)
	assert.Nil(t, in.CategoryID.Value)
	assert.False(t, in.ThumbnailURL.Set, "absent field is not set")
	require.NotNil(t, in.Tags)
	assert.Empty(t, *in.Tags)

	require.NoError(t, json.Unmarshal([]byte(`{"category_id": 7, "published_at": "2026-03-01T10:00:00Z"}`), &in))
	require.NotNil(t, in.CategoryID.Value)
	assert.Equal(t, int64(7), *in.CategoryID.Value)
	require.NotNil(t, in.PublishedAt.Value)
	assert.Equal(t, 2026, in.PublishedAt.Value.Year())
}

func TestTagAndCarouselInputValidate(t *testing.T) {
	tag := tagInput{Name: "  "}
	assert.Contains(t, fieldErrors(t, tag.validate()), "name")

	tag = tagInput{Name: " hssc "}
	require.NoError(t, tag.validate())
	assert.Equal(t, "hssc", tag.Name)

	item := carouselInput{}
	assert.Contains(t, fieldErrors(t, item.validate(true)), "text")

	item = carouselInput{IsActive: ptr(false)}
	assert.NoError(t, item.validate(false))
}
