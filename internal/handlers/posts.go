package handlers

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"jobalert/internal/apperr"
	"jobalert/internal/models"
	"jobalert/internal/pagination"
	"jobalert/internal/slug"
	"jobalert/internal/store"
)

// Default result sizes for the bounded post lists.
const (
	defaultSearchLimit  = 50
	defaultSummaryLimit = 25
	defaultLatestLimit  = 8

	// maxSlugAttempts bounds retries when a generated slug is taken by a
	// concurrent insert.
	maxSlugAttempts = 3

	// fallbackSlug is used for titles with no Latin letters or digits.
	fallbackSlug = "post"
)

// ListPosts returns one page of posts, optionally filtered by a search
// term matched against title and description.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r, pagination.DefaultLimit)
	page, err := a.posts.List(r.Context(), store.PostFilter{Search: r.URL.Query().Get("search")}, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page.Posts, pagination.NewMeta(p, page.Total))
}

// SearchPosts matches q against titles, descriptions, category names and
// tag names. A blank q returns an empty list.
func (a *API) SearchPosts(w http.ResponseWriter, r *http.Request) {
	limit := pagination.LimitFromRequest(r, defaultSearchLimit)
	posts, err := a.posts.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, posts)
}

// PostsSummary returns the newest posts of each category. The optional
// "categories" query parameter is a comma-separated list of names.
func (a *API) PostsSummary(w http.ResponseWriter, r *http.Request) {
	limit := pagination.LimitFromRequest(r, defaultSummaryLimit)

	var names []string
	if raw := r.URL.Query().Get("categories"); raw != "" {
		for _, n := range strings.Split(raw, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}

	summary, err := a.posts.Summary(r.Context(), names, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

// LatestPosts returns the newest posts of the category named by the
// required "category" query parameter.
func (a *API) LatestPosts(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		writeError(w, r, apperr.BadRequest("Query param %q is required", "category"))
		return
	}

	posts, err := a.posts.Latest(r.Context(), category, pagination.LimitFromRequest(r, defaultLatestLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, posts)
}

// GetPostBySlug returns a full post by its slug.
func (a *API) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	postSlug := chi.URLParam(r, "slug")
	post, err := a.posts.FindBySlug(r.Context(), postSlug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if post == nil {
		writeError(w, r, apperr.NotFound("Post with slug %q not found", postSlug))
		return
	}
	writeData(w, http.StatusOK, post)
}

// GetPost returns a full post by id.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.findPost(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, post)
}

// PostsByCategory returns every post of a category, newest first.
func (a *API) PostsByCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := a.findCategory(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	posts, err := a.posts.ListByCategory(r.Context(), cat.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, posts)
}

// PostsByTag returns one page of posts carrying the named tag. An unknown
// tag yields an empty page.
func (a *API) PostsByTag(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r, pagination.DefaultLimit)
	page, err := a.posts.List(r.Context(), store.PostFilter{Tag: chi.URLParam(r, "name")}, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page.Posts, pagination.NewMeta(p, page.Total))
}

// CreatePost adds a post from a JSON or multipart body. A multipart "file"
// becomes the thumbnail: it is uploaded first and deleted again if the
// database write fails.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, upload, err := readPostInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer upload.close()

	in.normalize()
	if err := in.validate(true); err != nil {
		writeError(w, r, err)
		return
	}
	explicitSlug, err := in.explicitSlug()
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &models.Post{BodyFormat: models.BodyFormatHTML}
	in.applyTo(p)
	p.Slug = explicitSlug

	obj, err := a.storeUpload(r.Context(), upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if obj != nil {
		p.ThumbnailURL = &obj.url
	}

	var tagIDs []int64
	if in.Tags != nil {
		tagIDs = *in.Tags
	}

	created, err := a.insertPost(r.Context(), p, tagIDs, explicitSlug != "")
	if err != nil {
		a.discardObject(r.Context(), obj)
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

// UpdatePost changes the supplied fields of a post. A supplied "tags" list
// replaces the post's tags; an empty list clears them. A replaced
// thumbnail that lives in our storage is deleted after the update commits.
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	existing, err := a.findPost(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in, upload, err := readPostInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer upload.close()

	in.normalize()
	if err := in.validate(false); err != nil {
		writeError(w, r, err)
		return
	}
	explicitSlug, err := in.explicitSlug()
	if err != nil {
		writeError(w, r, err)
		return
	}

	oldThumbnail := existing.ThumbnailURL
	p := *existing
	in.applyTo(&p)

	ctx := r.Context()
	switch {
	case explicitSlug != "":
		p.Slug = explicitSlug
	case in.Slug != nil:
		// An empty slug asks for one derived from the title.
		p.Slug, err = a.posts.UniqueSlug(ctx, baseSlug(p.Title), p.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	obj, err := a.storeUpload(ctx, upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if obj != nil {
		p.ThumbnailURL = &obj.url
	}

	var tagIDs []int64
	if in.Tags != nil {
		tagIDs = append([]int64{}, *in.Tags...)
	}

	updated, err := a.posts.Update(ctx, &p, tagIDs)
	if err == nil && updated == nil {
		err = apperr.NotFound("Post with ID %d not found", p.ID)
	}
	if err != nil {
		a.discardObject(ctx, obj)
		writeError(w, r, postConflict(err, p.Slug))
		return
	}

	if oldThumbnail != nil && (updated.ThumbnailURL == nil || *updated.ThumbnailURL != *oldThumbnail) {
		a.deleteStoredURL(ctx, oldThumbnail)
	}
	writeData(w, http.StatusOK, updated)
}

// DeletePost removes a post and its tag associations, then its stored
// thumbnail.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, err := a.findPost(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.posts.Delete(r.Context(), post.ID); err != nil {
		writeError(w, r, err)
		return
	}
	a.deleteStoredURL(r.Context(), post.ThumbnailURL)
	writeData(w, http.StatusOK, map[string]int64{"id": post.ID})
}

// findPost loads the post named by the {id} route parameter.
func (a *API) findPost(r *http.Request) (*models.Post, error) {
	id, err := urlID(r)
	if err != nil {
		return nil, err
	}
	post, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.NotFound("Post with ID %d not found", id)
	}
	return post, nil
}

// insertPost creates p. Without an explicit slug one is derived from the
// title and retried when a concurrent insert claims it first.
func (a *API) insertPost(ctx context.Context, p *models.Post, tagIDs []int64, explicitSlug bool) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		if !explicitSlug {
			s, err := a.posts.UniqueSlug(ctx, baseSlug(p.Title), 0)
			if err != nil {
				return nil, err
			}
			p.Slug = s
		}

		created, err := a.posts.Create(ctx, p, tagIDs)
		if errors.Is(err, store.ErrDuplicate) && !explicitSlug && attempt < maxSlugAttempts {
			continue
		}
		if err != nil {
			return nil, postConflict(err, p.Slug)
		}
		return created, nil
	}
}

// storeUpload uploads the request's thumbnail file, if any.
func (a *API) storeUpload(ctx context.Context, u *postUpload) (*uploadedObject, error) {
	if u == nil {
		return nil, nil
	}
	return a.uploadThumbnail(ctx, u.file, u.header)
}

func postConflict(err error, postSlug string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Conflict("Post with slug %q already exists", postSlug)
	}
	return err
}

// baseSlug derives a slug from a title.
func baseSlug(title string) string {
	if s := slug.Generate(title); s != "" {
		return s
	}
	return fallbackSlug
}

// explicitSlug normalises a client-supplied slug. Returns "" when none was
// given or it was blank.
func (in *postInput) explicitSlug() (string, error) {
	if in.Slug == nil || *in.Slug == "" {
		return "", nil
	}
	s := slug.Generate(*in.Slug)
	if s == "" {
		return "", apperr.Validation(map[string]string{"slug": "must contain letters or digits"})
	}
	return s, nil
}

// applyTo copies the supplied fields onto p. The slug is handled by the
// caller.
func (in *postInput) applyTo(p *models.Post) {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	if in.BodyFormat != nil && *in.BodyFormat != "" {
		p.BodyFormat = models.BodyFormat(*in.BodyFormat)
	}
	if in.ThumbnailURL.Set {
		p.ThumbnailURL = in.ThumbnailURL.Value
	}
	if in.CategoryID.Set {
		p.CategoryID = in.CategoryID.Value
	}
	if in.PublishedAt.Set {
		p.PublishedAt = in.PublishedAt.Value
	}
}

// postUpload is a thumbnail file attached to a multipart request.
type postUpload struct {
	file   multipart.File
	header *multipart.FileHeader
}

func (u *postUpload) close() {
	if u != nil {
		u.file.Close()
	}
}

// readPostInput decodes a post body from JSON or multipart/form-data.
func readPostInput(w http.ResponseWriter, r *http.Request) (*postInput, *postUpload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var in postInput
		if err := decodeJSON(w, r, &in); err != nil {
			return nil, nil, err
		}
		return &in, nil, nil
	}

	// Allow the file plus some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+maxJSONBody)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, apperr.TooLarge("File too large. Maximum size is 10 MB.")
		}
		return nil, nil, apperr.BadRequest("Invalid multipart body")
	}

	in, err := postInputFromForm(r.MultipartForm)
	if err != nil {
		return nil, nil, err
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.BadRequest("Invalid file upload")
	}
	return in, &postUpload{file: file, header: header}, nil
}

// postInputFromForm builds a postInput from multipart form values. Only
// keys present in the form are treated as supplied.
func postInputFromForm(form *multipart.Form) (*postInput, error) {
	value := func(key string) *string {
		if v, ok := form.Value[key]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}

	in := &postInput{
		Title:       value("title"),
		Slug:        value("slug"),
		Description: value("description"),
		Body:        value("body"),
		BodyFormat:  value("body_format"),
	}
	details := map[string]string{}

	if v := value("thumbnail_url"); v != nil {
		in.ThumbnailURL.set(v)
	}

	if v := value("category_id"); v != nil {
		if s := strings.TrimSpace(*v); s == "" {
			in.CategoryID.set(nil)
		} else if id, err := strconv.ParseInt(s, 10, 64); err != nil {
			details["category_id"] = "must be an integer"
		} else {
			in.CategoryID.set(&id)
		}
	}

	if v := value("published_at"); v != nil {
		if s := strings.TrimSpace(*v); s == "" {
			in.PublishedAt.set(nil)
		} else if t, err := time.Parse(time.RFC3339, s); err != nil {
			details["published_at"] = "must be an RFC 3339 timestamp"
		} else {
			in.PublishedAt.set(&t)
		}
	}

	if vals, ok := form.Value["tags"]; ok {
		ids, err := parseTagIDs(vals)
		if err != nil {
			details["tags"] = err.Error()
		}
		in.Tags = &ids
	}

	if len(details) > 0 {
		return nil, apperr.Validation(details)
	}
	return in, nil
}

// parseTagIDs accepts tag ids as repeated values, comma-separated lists or
// a mix of both. Blank entries are ignored; the result is never nil.
func parseTagIDs(vals []string) ([]int64, error) {
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errors.New("must be a list of integer ids")
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
