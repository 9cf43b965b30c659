// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON endpoints of the API: posts,
// categories, accounts and featured-image uploads.
package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/respond"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// Pagination defaults for the post listing.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ViewRecorder accepts a post view for background counting.
type ViewRecorder interface {
	Enqueue(id string) bool
}

// Posts groups the post endpoints.
type Posts struct {
	posts      store.PostStore
	categories store.CategoryStore
	views      ViewRecorder
	log        logrus.FieldLogger
	maxBody    int64
}

// NewPosts creates the post handler group. maxBody limits request bodies.
func NewPosts(posts store.PostStore, categories store.CategoryStore, views ViewRecorder, log logrus.FieldLogger, maxBody int64) *Posts {
	return &Posts{
		posts:      posts,
		categories: categories,
		views:      views,
		log:        log,
		maxBody:    maxBody,
	}
}

type createPostRequest struct {
	Title         string   `json:"title" validate:"required,notblank,max=300"`
	Content       string   `json:"content" validate:"required,notblank"`
	Author        string   `json:"author" validate:"required,mongodb"`
	Category      string   `json:"category" validate:"required,notblank"`
	Excerpt       string   `json:"excerpt" validate:"max=1000"`
	Slug          string   `json:"slug" validate:"omitempty,slug,max=300"`
	Tags          []string `json:"tags" validate:"max=20,dive,notblank,max=50"`
	FeaturedImage string   `json:"featuredImage" validate:"max=2048"`
	IsPublished   bool     `json:"isPublished"`
}

// updatePostRequest distinguishes absent fields (nil) from supplied ones.
type updatePostRequest struct {
	Title         *string   `json:"title" validate:"omitnil,notblank,max=300"`
	Content       *string   `json:"content" validate:"omitnil,notblank"`
	Author        *string   `json:"author" validate:"omitnil,notblank,mongodb"`
	Category      *string   `json:"category" validate:"omitnil,notblank"`
	Excerpt       *string   `json:"excerpt" validate:"omitnil,max=1000"`
	Slug          *string   `json:"slug" validate:"omitnil,slug,max=300"`
	Tags          *[]string `json:"tags" validate:"omitnil,max=20,dive,notblank,max=50"`
	FeaturedImage *string   `json:"featuredImage" validate:"omitnil,max=2048"`
	IsPublished   *bool     `json:"isPublished"`
}

type postList struct {
	Posts []models.Post `json:"posts"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

// List returns one page of posts, newest first, optionally narrowed to a
// category.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := positiveInt(q.Get("page"), defaultPage)
	limit := positiveInt(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	filter := store.PostFilter{CategoryID: models.CanonicalID(q.Get("category"))}

	ctx := r.Context()
	total, err := h.posts.CountPosts(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	posts := []models.Post{}
	// Pages far past the end cannot overflow the offset.
	if page-1 <= math.MaxInt32/limit {
		posts, err = h.posts.ListPosts(ctx, filter, (page-1)*limit, limit)
		if err != nil {
			respond.Error(w, r, h.log, err)
			return
		}
	}

	respond.JSON(w, http.StatusOK, postList{Posts: posts, Page: page, Limit: limit, Total: total})
}

// Get returns one post by id or slug and records the view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "idOrSlug")
	ctx := r.Context()

	var post *models.Post
	if models.IsID(token) {
		p, err := h.posts.GetPost(ctx, models.CanonicalID(token))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			respond.Error(w, r, h.log, err)
			return
		}
		post = p
	}
	if post == nil {
		p, err := h.posts.GetPostBySlug(ctx, token)
		if errors.Is(err, store.ErrNotFound) {
			respond.Error(w, r, h.log, apperr.NotFound("Post not found"))
			return
		}
		if err != nil {
			respond.Error(w, r, h.log, err)
			return
		}
		post = p
	}

	// The response counts the view being served; the stored counter
	// catches up once the worker runs.
	post.ViewCount++
	respond.JSON(w, http.StatusOK, post)

	if h.views != nil {
		h.views.Enqueue(post.ID)
	}
}

// Create stores a new post. The slug is derived from the title when not
// supplied.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	postSlug := req.Slug
	if postSlug == "" {
		postSlug = slug.Generate(req.Title)
		if postSlug == "" {
			respond.Error(w, r, h.log, apperr.Validation(ValidationMessage, apperr.FieldError{
				Field:   "title",
				Message: "Title must contain at least one letter or digit",
			}))
			return
		}
	}

	req.Author = models.CanonicalID(req.Author)
	req.Category = models.CanonicalID(req.Category)

	ctx := r.Context()
	if err := h.checkCategory(r, req.Category); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	post := &models.Post{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Slug:          postSlug,
		AuthorID:      req.Author,
		CategoryID:    req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		IsPublished:   req.IsPublished,
	}
	if err := h.posts.CreatePost(ctx, post); err != nil {
		respond.Error(w, r, h.log, h.writeError(err))
		return
	}

	respond.JSON(w, http.StatusCreated, post)
}

// Update applies the supplied fields to an existing post.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id := models.CanonicalID(chi.URLParam(r, "id"))
	if !models.IsID(id) {
		respond.Error(w, r, h.log, apperr.NotFound("Post not found"))
		return
	}

	var req updatePostRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	if req.Author != nil {
		*req.Author = models.CanonicalID(*req.Author)
	}
	if req.Category != nil {
		*req.Category = models.CanonicalID(*req.Category)
		if err := h.checkCategory(r, *req.Category); err != nil {
			respond.Error(w, r, h.log, err)
			return
		}
	}

	patch := store.PostPatch{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Slug:          req.Slug,
		AuthorID:      req.Author,
		CategoryID:    req.Category,
		Tags:          req.Tags,
		FeaturedImage: req.FeaturedImage,
		IsPublished:   req.IsPublished,
	}
	post, err := h.posts.UpdatePost(r.Context(), id, patch)
	if err != nil {
		respond.Error(w, r, h.log, h.writeError(err))
		return
	}

	respond.JSON(w, http.StatusOK, post)
}

// Delete removes a post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id := models.CanonicalID(chi.URLParam(r, "id"))
	if !models.IsID(id) {
		respond.Error(w, r, h.log, apperr.NotFound("Post not found"))
		return
	}

	if err := h.posts.DeletePost(r.Context(), id); err != nil {
		respond.Error(w, r, h.log, h.writeError(err))
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Post deleted",
	})
}

// checkCategory confirms that id names an existing category.
func (h *Posts) checkCategory(r *http.Request, id string) error {
	_, err := h.categories.GetCategory(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Validation("Invalid category")
	}
	return err
}

// writeError maps store sentinels of post writes onto domain errors.
func (h *Posts) writeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Post not found")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("A post with this slug already exists", http.StatusBadRequest)
	}
	return err
}

// positiveInt parses s as a positive integer, returning fallback for
// anything else.
func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
