// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// Post is a blog article. AuthorID and CategoryID are the stored references;
// Author and Category are filled in only when a read populates them.
type Post struct {
	ID            string
	Title         string
	Content       string
	Excerpt       string
	Slug          string
	AuthorID      string
	CategoryID    string
	Tags          []string
	FeaturedImage string
	IsPublished   bool
	ViewCount     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Populated references.
	Author   *UserRef
	Category *CategoryRef
}

// postJSON is the wire shape of a Post. Author and category are either a
// bare id or the populated object.
type postJSON struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	Slug          string    `json:"slug"`
	Author        any       `json:"author"`
	Category      any       `json:"category"`
	Tags          []string  `json:"tags"`
	FeaturedImage string    `json:"featuredImage"`
	IsPublished   bool      `json:"isPublished"`
	ViewCount     int64     `json:"viewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MarshalJSON renders references populated when available.
func (p Post) MarshalJSON() ([]byte, error) {
	out := postJSON{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Slug:          p.Slug,
		Author:        p.AuthorID,
		Category:      p.CategoryID,
		Tags:          p.Tags,
		FeaturedImage: p.FeaturedImage,
		IsPublished:   p.IsPublished,
		ViewCount:     p.ViewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Author != nil {
		out.Author = p.Author
	}
	if p.Category != nil {
		out.Category = p.Category
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both populated and bare references.
func (p *Post) UnmarshalJSON(data []byte) error {
	var in struct {
		postJSON
		Author   json.RawMessage `json:"author"`
		Category json.RawMessage `json:"category"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*p = Post{
		ID:            in.ID,
		Title:         in.Title,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Slug:          in.Slug,
		Tags:          in.Tags,
		FeaturedImage: in.FeaturedImage,
		IsPublished:   in.IsPublished,
		ViewCount:     in.ViewCount,
		CreatedAt:     in.CreatedAt,
		UpdatedAt:     in.UpdatedAt,
	}

	if len(in.Author) > 0 && in.Author[0] == '{' {
		var ref UserRef
		if err := json.Unmarshal(in.Author, &ref); err != nil {
			return err
		}
		p.Author = &ref
		p.AuthorID = ref.ID
	} else if len(in.Author) > 0 {
		if err := json.Unmarshal(in.Author, &p.AuthorID); err != nil {
			return err
		}
	}

	if len(in.Category) > 0 && in.Category[0] == '{' {
		var ref CategoryRef
		if err := json.Unmarshal(in.Category, &ref); err != nil {
			return err
		}
		p.Category = &ref
		p.CategoryID = ref.ID
	} else if len(in.Category) > 0 {
		if err := json.Unmarshal(in.Category, &p.CategoryID); err != nil {
			return err
		}
	}
	return nil
}
