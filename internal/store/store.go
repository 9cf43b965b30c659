// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store declares the persistence contract for users, categories and
// posts. Backends live in subpackages: mongodb, postgres and memory.
package store

import (
	"context"
	"errors"

	"inkwell/internal/models"
)

var (
	// ErrNotFound is returned when an id or slug does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique field (email, category name,
	// post slug) is already taken.
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the full persistence surface used by the server.
type Store interface {
	UserStore
	CategoryStore
	PostStore
	Close(ctx context.Context) error
}

// UserStore persists accounts. Emails are compared as stored; callers
// normalize them first.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// PostFilter narrows ListPosts and CountPosts. Zero value matches all posts.
type PostFilter struct {
	CategoryID string
}

// PostPatch carries the fields of a partial update. Nil fields are left
// untouched.
type PostPatch struct {
	Title         *string
	Content       *string
	Excerpt       *string
	Slug          *string
	AuthorID      *string
	CategoryID    *string
	Tags          *[]string
	FeaturedImage *string
	IsPublished   *bool
}

// Apply copies the set fields onto p.
func (pp PostPatch) Apply(p *models.Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.Excerpt != nil {
		p.Excerpt = *pp.Excerpt
	}
	if pp.Slug != nil {
		p.Slug = *pp.Slug
	}
	if pp.AuthorID != nil {
		p.AuthorID = *pp.AuthorID
	}
	if pp.CategoryID != nil {
		p.CategoryID = *pp.CategoryID
	}
	if pp.Tags != nil {
		p.Tags = append([]string(nil), (*pp.Tags)...)
	}
	if pp.FeaturedImage != nil {
		p.FeaturedImage = *pp.FeaturedImage
	}
	if pp.IsPublished != nil {
		p.IsPublished = *pp.IsPublished
	}
}

// PostStore persists posts. Reads through GetPost, GetPostBySlug and
// ListPosts return posts with Author and Category populated; CreatePost and
// UpdatePost return bare references.
type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	UpdatePost(ctx context.Context, id string, patch PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	IncrementPostViews(ctx context.Context, id string) error
}
