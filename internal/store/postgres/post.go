// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, content, excerpt, slug, author_id, category_id,
	tags, featured_image, is_published, view_count, created_at, updated_at`

// populatedSelect joins the author and category onto each post.
const populatedSelect = `
	SELECT p.id, p.title, p.content, p.excerpt, p.slug, p.author_id, p.category_id,
	       p.tags, p.featured_image, p.is_published, p.view_count, p.created_at, p.updated_at,
	       u.id, u.name, u.email,
	       c.id, c.name, c.description
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

// scanPost scans the bare post columns.
func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p    models.Post
		tags []byte
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.Slug, &p.AuthorID, &p.CategoryID,
		&tags, &p.FeaturedImage, &p.IsPublished, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return &p, nil
}

// scanPopulatedPost scans a row produced by populatedSelect.
func scanPopulatedPost(row rowScanner) (*models.Post, error) {
	var (
		p                            models.Post
		tags                         []byte
		authorID, authorName, email  sql.NullString
		categoryID, categoryName, cd sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Excerpt, &p.Slug, &p.AuthorID, &p.CategoryID,
		&tags, &p.FeaturedImage, &p.IsPublished, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&authorID, &authorName, &email,
		&categoryID, &categoryName, &cd,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if authorID.Valid {
		p.Author = &models.UserRef{ID: authorID.String, Name: authorName.String, Email: email.String}
	}
	if categoryID.Valid {
		p.Category = &models.CategoryRef{ID: categoryID.String, Name: categoryName.String, Description: cd.String}
	}
	return &p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// CreatePost inserts p and fills in its id, counters and timestamps.
func (s *PostStore) CreatePost(ctx context.Context, p *models.Post) error {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, title, content, excerpt, slug, author_id, category_id,
		                   tags, featured_image, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
		RETURNING `+postColumns,
		models.NewID(), p.Title, p.Content, p.Excerpt, p.Slug, p.AuthorID, p.CategoryID,
		tags, p.FeaturedImage, p.IsPublished,
	)
	created, err := scanPost(row)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	*p = *created
	return nil
}

// GetPost retrieves a populated post by id.
func (s *PostStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPopulatedPost(s.db.QueryRowContext(ctx, populatedSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// GetPostBySlug retrieves a populated post by slug.
func (s *PostStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := scanPopulatedPost(s.db.QueryRowContext(ctx, populatedSelect+` WHERE p.slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// filterClause renders the WHERE clause and arguments for filter. Placeholders
// start at $1.
func filterClause(filter store.PostFilter) (string, []any) {
	if filter.CategoryID == "" {
		return "", nil
	}
	return ` WHERE p.category_id = $1`, []any{filter.CategoryID}
}

// ListPosts returns a page of populated posts, newest first.
func (s *PostStore) ListPosts(ctx context.Context, filter store.PostFilter, offset, limit int) ([]models.Post, error) {
	where, args := filterClause(filter)
	n := len(args)
	query := populatedSelect + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC OFFSET $%d LIMIT $%d`, n+1, n+2)
	args = append(args, offset, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPopulatedPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// CountPosts returns how many posts match filter.
func (s *PostStore) CountPosts(ctx context.Context, filter store.PostFilter) (int64, error) {
	where, args := filterClause(filter)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// UpdatePost writes the set fields of patch and bumps updated_at.
func (s *PostStore) UpdatePost(ctx context.Context, id string, patch store.PostPatch) (*models.Post, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Excerpt != nil {
		set("excerpt", *patch.Excerpt)
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.AuthorID != nil {
		set("author_id", *patch.AuthorID)
	}
	if patch.CategoryID != nil {
		set("category_id", *patch.CategoryID)
	}
	if patch.Tags != nil {
		tags, err := encodeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		args = append(args, tags)
		sets = append(sets, fmt.Sprintf("tags = $%d::jsonb", len(args)))
	}
	if patch.FeaturedImage != nil {
		set("featured_image", *patch.FeaturedImage)
	}
	if patch.IsPublished != nil {
		set("is_published", *patch.IsPublished)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)

	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, store.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// DeletePost removes a post by id.
func (s *PostStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// IncrementPostViews adds one to the post's view counter in place.
func (s *PostStore) IncrementPostViews(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment post views: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment post views rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
