// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobalert/internal/models"
	"jobalert/internal/pagination"
	"jobalert/internal/slug"
)

// PostStore handles all post-related database operations, including the
// post_tags associations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows a paginated post listing. Zero values mean "no filter".
type PostFilter struct {
	// Search matches title or description, case-insensitive substring.
	Search string
	// CategoryID restricts the listing to one category.
	CategoryID *int64
	// Tag restricts the listing to posts carrying a tag with this name,
	// compared ignoring case.
	Tag string
}

// PostPage is one page of summaries plus the size of the whole result set.
type PostPage struct {
	Posts []models.PostSummary
	Total int
}

// postOrder is the ordering used by every listing.
const postOrder = `ORDER BY p.created_at DESC, p.id DESC`

// tagsJSON aggregates a post's tags into a JSON array ordered by name.
const tagsJSON = `COALESCE((
		SELECT json_agg(json_build_object('id', t.id, 'name', t.name) ORDER BY t.name, t.id)
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = p.id
	), '[]')::text`

// summarySelect selects the summary columns of posts p joined to categories c.
const summarySelect = `
	SELECT p.id, p.title, p.slug, p.description, p.thumbnail_url,
	       p.category_id, c.name, ` + tagsJSON + `,
	       p.published_at, p.created_at
	FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id`

// scanSummary scans a row produced by summarySelect.
func scanSummary(scanner interface{ Scan(...any) error }) (models.PostSummary, error) {
	var ps models.PostSummary
	var tags string
	err := scanner.Scan(
		&ps.ID, &ps.Title, &ps.Slug, &ps.Description, &ps.ThumbnailURL,
		&ps.CategoryID, &ps.CategoryName, &tags,
		&ps.PublishedAt, &ps.CreatedAt,
	)
	if err != nil {
		return ps, err
	}
	if err := json.Unmarshal([]byte(tags), &ps.Tags); err != nil {
		return ps, fmt.Errorf("decode tags: %w", err)
	}
	return ps, nil
}

// collectSummaries drains rows produced by summarySelect.
func collectSummaries(rows *sql.Rows) ([]models.PostSummary, error) {
	defer rows.Close()

	items := []models.PostSummary{}
	for rows.Next() {
		ps, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post summary: %w", err)
		}
		items = append(items, ps)
	}
	return items, rows.Err()
}

// postSelect selects every column of a full post p with its category.
const postSelect = `
	SELECT p.id, p.title, p.slug, p.description, p.body, p.body_format,
	       p.thumbnail_url, p.category_id, p.published_at, p.created_at, p.updated_at,
	       c.name, ` + tagsJSON + `
	FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id`

// scanPost scans a row produced by postSelect.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	var categoryName sql.NullString
	var tags string
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Body, &p.BodyFormat,
		&p.ThumbnailURL, &p.CategoryID, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
		&categoryName, &tags,
	)
	if err != nil {
		return nil, err
	}
	if p.CategoryID != nil && categoryName.Valid {
		p.Category = &models.CategoryRef{ID: *p.CategoryID, Name: categoryName.String}
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &p, nil
}

// FindByID retrieves a full post by id. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.findOne(ctx, s.db, "p.id = $1", id)
}

// FindBySlug retrieves a full post by slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	return s.findOne(ctx, s.db, "p.slug = $1", postSlug)
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostStore) findOne(ctx context.Context, q queryRower, cond string, arg any) (*models.Post, error) {
	p, err := scanPost(q.QueryRowContext(ctx, postSelect+` WHERE `+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// List returns one page of post summaries matching f together with the
// total number of matches. The count and the page are read inside a single
// repeatable-read transaction so the total describes the same snapshot the
// page was drawn from.
func (s *PostStore) List(ctx context.Context, f PostFilter, p pagination.Params) (*PostPage, error) {
	var w whereClause
	if q := strings.TrimSpace(f.Search); q != "" {
		pat := likePattern(q)
		w.add("(p.title ILIKE ? OR p.description ILIKE ?)", pat, pat)
	}
	if f.CategoryID != nil {
		w.add("p.category_id = ?", *f.CategoryID)
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		w.add(`EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND LOWER(t.name) = LOWER(?)
		)`, tag)
	}

	page := &PostPage{}
	err := withTx(ctx, s.db, snapshot, func(tx *sql.Tx) error {
		countArgs := append([]any(nil), w.args...)
		countQuery := `SELECT COUNT(*) FROM posts p ` + w.String()
		if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&page.Total); err != nil {
			return fmt.Errorf("count posts: %w", err)
		}

		limit := w.next(p.Limit)
		offset := w.next(p.Offset())
		rows, err := tx.QueryContext(ctx,
			summarySelect+" "+w.String()+" "+postOrder+" LIMIT "+limit+" OFFSET "+offset,
			w.args...,
		)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		page.Posts, err = collectSummaries(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListByCategory returns every post in a category, newest first.
func (s *PostStore) ListByCategory(ctx context.Context, categoryID int64) ([]models.PostSummary, error) {
	rows, err := s.db.QueryContext(ctx, summarySelect+` WHERE p.category_id = $1 `+postOrder, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return collectSummaries(rows)
}

// Search matches q against title, description, category name and tag
// names, case-insensitively, returning at most limit posts. A blank query
// returns an empty list rather than the whole collection.
func (s *PostStore) Search(ctx context.Context, q string, limit int) ([]models.PostSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.PostSummary{}, nil
	}

	rows, err := s.db.QueryContext(ctx, summarySelect+`
		WHERE p.title ILIKE $1
		   OR p.description ILIKE $1
		   OR c.name ILIKE $1
		   OR EXISTS (
		       SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		       WHERE pt.post_id = p.id AND t.name ILIKE $1
		   )
		`+postOrder+` LIMIT $2`,
		likePattern(q), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return collectSummaries(rows)
}

// Latest returns the newest posts of the category named categoryName,
// compared ignoring case. An unknown category yields an empty list.
func (s *PostStore) Latest(ctx context.Context, categoryName string, limit int) ([]models.PostSummary, error) {
	rows, err := s.db.QueryContext(ctx, summarySelect+`
		WHERE LOWER(c.name) = LOWER($1)
		`+postOrder+` LIMIT $2`,
		categoryName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("latest posts: %w", err)
	}
	return collectSummaries(rows)
}

// Summary returns, for each category ordered by name, its limit newest
// posts. When names is non-empty only categories whose name matches one of
// them (ignoring case) are included. Categories without posts are kept
// with an empty list.
func (s *PostStore) Summary(ctx context.Context, names []string, limit int) ([]models.CategorySummary, error) {
	var w whereClause
	lim := w.next(limit)
	if len(names) > 0 {
		lowered := make([]string, 0, len(names))
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				lowered = append(lowered, strings.ToLower(n))
			}
		}
		if len(lowered) > 0 {
			w.add("LOWER(c.name) = ANY(?)", lowered)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		WITH ranked AS (
			SELECT p.id, p.title, p.slug, p.description, p.thumbnail_url,
			       p.category_id, p.published_at, p.created_at,
			       ROW_NUMBER() OVER (
			           PARTITION BY p.category_id
			           ORDER BY p.created_at DESC, p.id DESC
			       ) AS rn
			FROM posts p
			WHERE p.category_id IS NOT NULL
		)
		SELECT c.id, c.name,
		       p.id, p.title, p.slug, p.description, p.thumbnail_url,
		       p.published_at, p.created_at
		FROM categories c
		LEFT JOIN ranked p ON p.category_id = c.id AND p.rn <= `+lim+`
		`+w.String()+`
		ORDER BY c.name ASC, p.created_at DESC, p.id DESC
	`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("summarise posts: %w", err)
	}
	defer rows.Close()

	result := []models.CategorySummary{}
	for rows.Next() {
		var (
			catID              int64
			catName            string
			postID             sql.NullInt64
			title, pslug, desc sql.NullString
			createdAt          sql.NullTime
			ps                 models.PostSummary
		)
		err := rows.Scan(
			&catID, &catName,
			&postID, &title, &pslug, &desc, &ps.ThumbnailURL,
			&ps.PublishedAt, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}

		if len(result) == 0 || result[len(result)-1].ID != catID {
			result = append(result, models.CategorySummary{
				ID:    catID,
				Name:  catName,
				Slug:  slug.Generate(catName),
				Posts: []models.PostSummary{},
			})
		}
		if !postID.Valid {
			continue
		}

		ps.ID = postID.Int64
		ps.Title = title.String
		ps.Slug = pslug.String
		ps.Description = desc.String
		ps.CreatedAt = createdAt.Time
		ps.CategoryID = &catID
		name := catName
		ps.CategoryName = &name
		ps.Tags = []models.TagRef{}
		last := &result[len(result)-1]
		last.Posts = append(last.Posts, ps)
	}
	return result, rows.Err()
}

// SlugTaken reports whether a post other than excludeID uses postSlug.
// Pass 0 as excludeID when creating.
func (s *PostStore) SlugTaken(ctx context.Context, postSlug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`,
		postSlug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// UniqueSlug returns base if it is free, otherwise the first free
// "base-N" candidate starting at N=2.
func (s *PostStore) UniqueSlug(ctx context.Context, base string, excludeID int64) (string, error) {
	for n := 1; ; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := s.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// Create inserts a post and its tag associations in one transaction and
// returns the stored post. Returns ErrDuplicate when the slug is taken and
// ErrInvalidReference when the category or a tag does not exist.
func (s *PostStore) Create(ctx context.Context, p *models.Post, tagIDs []int64) (*models.Post, error) {
	if p.BodyFormat == "" {
		p.BodyFormat = models.BodyFormatHTML
	}

	var result *models.Post
	err := withTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO posts (title, slug, description, body, body_format,
			                   thumbnail_url, category_id, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, p.Title, p.Slug, p.Description, p.Body, p.BodyFormat,
			p.ThumbnailURL, p.CategoryID, p.PublishedAt,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("create post: %w", classify(err))
		}

		if err := insertPostTags(ctx, tx, id, tagIDs); err != nil {
			return err
		}

		result, err = s.findOne(ctx, tx, "p.id = $1", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes every column of p. When tagIDs is non-nil the post's tag
// associations are replaced wholesale by it (an empty slice clears them);
// a nil tagIDs leaves them untouched. Returns nil if the post vanished.
func (s *PostStore) Update(ctx context.Context, p *models.Post, tagIDs []int64) (*models.Post, error) {
	var result *models.Post
	err := withTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE posts SET
				title = $1, slug = $2, description = $3, body = $4, body_format = $5,
				thumbnail_url = $6, category_id = $7, published_at = $8,
				updated_at = NOW()
			WHERE id = $9
		`, p.Title, p.Slug, p.Description, p.Body, p.BodyFormat,
			p.ThumbnailURL, p.CategoryID, p.PublishedAt, p.ID,
		)
		if err != nil {
			return fmt.Errorf("update post: %w", classify(err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		if tagIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
				return fmt.Errorf("clear post tags: %w", err)
			}
			if err := insertPostTags(ctx, tx, p.ID, tagIDs); err != nil {
				return err
			}
		}

		result, err = s.findOne(ctx, tx, "p.id = $1", p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a post. Its tag associations are deleted first, in the
// same transaction, so no join rows outlive the post.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
			return fmt.Errorf("delete post tags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

// insertPostTags attaches tags to a post. Duplicate ids are ignored.
func insertPostTags(ctx context.Context, tx *sql.Tx, postID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO post_tags (post_id, tag_id)
		SELECT $1, UNNEST($2::bigint[])
		ON CONFLICT DO NOTHING
	`, postID, tagIDs)
	if err != nil {
		return fmt.Errorf("insert post tags: %w", classify(err))
	}
	return nil
}
