package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"jobalert/internal/apperr"
	"jobalert/internal/models"
)

// Validation limits for request fields.
const (
	maxCategoryNameLen = 100
	maxDescriptionLen  = 500
	maxTitleLen        = 300
	maxSlugLen         = 300
	maxPostDescLen     = 1_000
	maxBodyLen         = 200_000
	maxTagNameLen      = 50
	maxCarouselTextLen = 500
)

// nullable distinguishes an absent JSON field (Set is false) from an
// explicit null (Set is true, Value is nil).
type nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only called for fields present in the document.
func (n *nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// set marks n present with value v.
func (n *nullable[T]) set(v *T) {
	n.Set = true
	n.Value = v
}

// categoryInput is the body of POST and PUT /categories.
type categoryInput struct {
	Name        *string          `json:"name"`
	Description nullable[string] `json:"description"`
}

func (in *categoryInput) normalize() {
	trimPtr(in.Name)
	trimPtr(in.Description.Value)
}

func (in *categoryInput) validate(create bool) error {
	return validationErrors(validation.Errors{
		"name": validation.Validate(in.Name,
			validation.When(create, validation.Required),
			validation.NilOrNotEmpty,
			validation.RuneLength(1, maxCategoryNameLen),
		),
		"description": validation.Validate(in.Description.Value,
			validation.RuneLength(0, maxDescriptionLen),
		),
	})
}

// postInput is the body of POST and PUT /posts, decoded from JSON or
// assembled from multipart form values.
type postInput struct {
	Title        *string             `json:"title"`
	Slug         *string             `json:"slug"`
	Description  *string             `json:"description"`
	Body         *string             `json:"body"`
	BodyFormat   *string             `json:"body_format"`
	ThumbnailURL nullable[string]    `json:"thumbnail_url"`
	CategoryID   nullable[int64]     `json:"category_id"`
	PublishedAt  nullable[time.Time] `json:"published_at"`
	Tags         *[]int64            `json:"tags"`
}

func (in *postInput) normalize() {
	trimPtr(in.Title)
	trimPtr(in.Slug)
	trimPtr(in.BodyFormat)
	trimPtr(in.ThumbnailURL.Value)
	if in.ThumbnailURL.Value != nil && *in.ThumbnailURL.Value == "" {
		in.ThumbnailURL.Value = nil
	}
}

func (in *postInput) validate(create bool) error {
	var tags []int64
	if in.Tags != nil {
		tags = *in.Tags
	}
	return validationErrors(validation.Errors{
		"title": validation.Validate(in.Title,
			validation.When(create, validation.Required),
			validation.NilOrNotEmpty,
			validation.RuneLength(1, maxTitleLen),
		),
		"slug":        validation.Validate(in.Slug, validation.RuneLength(0, maxSlugLen)),
		"description": validation.Validate(in.Description, validation.RuneLength(0, maxPostDescLen)),
		"body":        validation.Validate(in.Body, validation.RuneLength(0, maxBodyLen)),
		"body_format": validation.Validate(in.BodyFormat,
			validation.In(string(models.BodyFormatHTML), string(models.BodyFormatMarkdown)).
				Error("must be html or markdown"),
		),
		"thumbnail_url": validation.Validate(in.ThumbnailURL.Value, is.URL),
		"category_id":   validation.Validate(in.CategoryID.Value, validation.Min(int64(1))),
		"tags":          validation.Validate(tags, validation.Each(validation.Min(int64(1)))),
	})
}

// tagInput is the body of POST /tags.
type tagInput struct {
	Name string `json:"name"`
}

func (in *tagInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return validationErrors(validation.Errors{
		"name": validation.Validate(in.Name, validation.Required, validation.RuneLength(1, maxTagNameLen)),
	})
}

// carouselInput is the body of POST and PUT /carousel.
type carouselInput struct {
	Text     *string `json:"text"`
	IsActive *bool   `json:"is_active"`
}

func (in *carouselInput) validate(create bool) error {
	trimPtr(in.Text)
	return validationErrors(validation.Errors{
		"text": validation.Validate(in.Text,
			validation.When(create, validation.Required),
			validation.NilOrNotEmpty,
			validation.RuneLength(1, maxCarouselTextLen),
		),
	})
}

// validationErrors turns ozzo field errors into a 400 carrying per-field
// messages. Returns nil when every field passed.
func validationErrors(errs validation.Errors) error {
	err := errs.Filter()
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		return apperr.Internal(err)
	}
	details := make(map[string]string, len(fields))
	for field, fe := range fields {
		var internal validation.InternalError
		if errors.As(fe, &internal) {
			return apperr.Internal(fe)
		}
		details[field] = fe.Error()
	}
	return apperr.Validation(details)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
