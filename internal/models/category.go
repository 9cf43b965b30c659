// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"
)

// Category groups posts. Names are unique; categories are never edited or
// removed once created.
type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Ref returns the populated category shape embedded in post responses.
func (c *Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name, Description: c.Description}
}

// CategoryRef is the subset of a Category shown when a post's category is
// populated.
type CategoryRef struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultCategories is the starter set written by the seeder.
var DefaultCategories = []Category{
	{Name: "Technology", Description: "Posts about software, hardware, and tech trends"},
	{Name: "Travel", Description: "Travel experiences and tips"},
	{Name: "Food", Description: "Recipes, restaurant reviews, and culinary adventures"},
	{Name: "Lifestyle", Description: "Daily life, health, and wellness"},
	{Name: "Programming", Description: "Coding tutorials and development tips"},
}
