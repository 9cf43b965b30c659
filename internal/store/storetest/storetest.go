// Package storetest holds the behaviour every store.Store backend must share.
// Backend test files call Run with a constructor for a ready store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Run exercises the full store contract against s. Entity names carry a
// random suffix so the suite can run against a shared database.
func Run(t *testing.T, s store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, s) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, s) })
	t.Run("Posts", func(t *testing.T) { testPosts(t, s) })
	t.Run("ListPosts", func(t *testing.T) { testListPosts(t, s) })
	t.Run("UpdatePost", func(t *testing.T) { testUpdatePost(t, s) })
	t.Run("DeletePost", func(t *testing.T) { testDeletePost(t, s) })
	t.Run("IncrementPostViews", func(t *testing.T) { testIncrementViews(t, s) })
}

func suffix() string {
	return models.NewID()[16:]
}

func mustCategory(t *testing.T, s store.Store, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name + "-" + suffix(), Description: "test category"}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func mustUser(t *testing.T, s store.Store) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Store Tester",
		Email:        "tester-" + suffix() + "@store-test.local",
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealhash",
		Role:         models.RoleAuthor,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func mustPost(t *testing.T, s store.Store, author *models.User, cat *models.Category, title string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:      title,
		Content:    "<p>" + title + "</p>",
		Excerpt:    "excerpt",
		Slug:       "post-" + suffix(),
		AuthorID:   author.ID,
		CategoryID: cat.ID,
		Tags:       []string{"go", "test"},
	}
	if err := s.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	// Keep creation times strictly ordered on backends with coarse clocks.
	time.Sleep(5 * time.Millisecond)
	return p
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s)

	if !models.IsID(u.ID) {
		t.Errorf("user id %q is not an ObjectID", u.ID)
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	dup := &models.User{Name: "Dup", Email: u.Email, PasswordHash: "x", Role: models.RoleAuthor}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate email: got %v, want ErrDuplicate", err)
	}

	got, err := s.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != u.PasswordHash || got.Role != models.RoleAuthor {
		t.Errorf("GetUserByEmail: got %+v, want %+v", got, u)
	}

	got, err = s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("GetUser email: got %q, want %q", got.Email, u.Email)
	}

	if _, err := s.GetUser(ctx, models.NewID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUser unknown: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(ctx, "nobody-"+suffix()+"@store-test.local"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByEmail unknown: got %v, want ErrNotFound", err)
	}
}

func testCategories(t *testing.T, s store.Store) {
	ctx := context.Background()
	c := mustCategory(t, s, "Cat")

	dup := &models.Category{Name: c.Name}
	if err := s.CreateCategory(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate name: got %v, want ErrDuplicate", err)
	}

	got, err := s.GetCategory(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != c.Name || got.Description != c.Description {
		t.Errorf("GetCategory: got %+v, want %+v", got, c)
	}

	got, err = s.GetCategoryByName(ctx, c.Name)
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("GetCategoryByName id: got %q, want %q", got.ID, c.ID)
	}

	if _, err := s.GetCategory(ctx, models.NewID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetCategory unknown: got %v, want ErrNotFound", err)
	}

	all, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	found := false
	for i, item := range all {
		if item.ID == c.ID {
			found = true
		}
		if i > 0 && all[i-1].Name > item.Name {
			t.Errorf("ListCategories not sorted by name at %d: %q > %q", i, all[i-1].Name, item.Name)
		}
	}
	if !found {
		t.Error("ListCategories does not include the created category")
	}
}

func testPosts(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := mustUser(t, s)
	cat := mustCategory(t, s, "Posts")
	p := mustPost(t, s, author, cat, "First Post")

	if !models.IsID(p.ID) {
		t.Errorf("post id %q is not an ObjectID", p.ID)
	}
	if p.ViewCount != 0 {
		t.Errorf("new post view count: got %d, want 0", p.ViewCount)
	}

	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Title != p.Title || got.Slug != p.Slug || got.Content != p.Content {
		t.Errorf("GetPost: got %+v, want %+v", got, p)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "test" {
		t.Errorf("GetPost tags: got %v", got.Tags)
	}
	if got.Author == nil || got.Author.Name != author.Name || got.Author.Email != author.Email {
		t.Errorf("GetPost author not populated: %+v", got.Author)
	}
	if got.Category == nil || got.Category.Name != cat.Name {
		t.Errorf("GetPost category not populated: %+v", got.Category)
	}

	bySlug, err := s.GetPostBySlug(ctx, p.Slug)
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if bySlug.ID != p.ID {
		t.Errorf("GetPostBySlug id: got %q, want %q", bySlug.ID, p.ID)
	}

	dup := &models.Post{Title: "Dup", Content: "x", Slug: p.Slug, AuthorID: author.ID, CategoryID: cat.ID}
	if err := s.CreatePost(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate slug: got %v, want ErrDuplicate", err)
	}

	if _, err := s.GetPost(ctx, models.NewID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPost unknown: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetPostBySlug(ctx, "missing-"+suffix()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPostBySlug unknown: got %v, want ErrNotFound", err)
	}
}

func testListPosts(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := mustUser(t, s)
	cat := mustCategory(t, s, "List")
	other := mustCategory(t, s, "Other")

	for _, title := range []string{"one", "two", "three", "four", "five"} {
		mustPost(t, s, author, cat, title)
	}
	mustPost(t, s, author, other, "elsewhere")

	filter := store.PostFilter{CategoryID: cat.ID}
	total, err := s.CountPosts(ctx, filter)
	if err != nil {
		t.Fatalf("CountPosts: %v", err)
	}
	if total != 5 {
		t.Errorf("CountPosts: got %d, want 5", total)
	}

	first, err := s.ListPosts(ctx, filter, 0, 2)
	if err != nil {
		t.Fatalf("ListPosts page 1: %v", err)
	}
	second, err := s.ListPosts(ctx, filter, 2, 2)
	if err != nil {
		t.Fatalf("ListPosts page 2: %v", err)
	}
	third, err := s.ListPosts(ctx, filter, 4, 2)
	if err != nil {
		t.Fatalf("ListPosts page 3: %v", err)
	}

	var titles []string
	for _, page := range [][]models.Post{first, second, third} {
		for _, p := range page {
			titles = append(titles, p.Title)
			if p.CategoryID != cat.ID {
				t.Errorf("post %q leaked through category filter", p.Title)
			}
			if p.Author == nil || p.Category == nil {
				t.Errorf("post %q not populated", p.Title)
			}
		}
	}
	want := []string{"five", "four", "three", "two", "one"}
	if len(titles) != len(want) {
		t.Fatalf("titles: got %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("order: got %v, want %v", titles, want)
			break
		}
	}

	beyond, err := s.ListPosts(ctx, filter, 10, 2)
	if err != nil {
		t.Fatalf("ListPosts beyond end: %v", err)
	}
	if len(beyond) != 0 {
		t.Errorf("ListPosts beyond end: got %d posts, want 0", len(beyond))
	}

	none, err := s.CountPosts(ctx, store.PostFilter{CategoryID: models.NewID()})
	if err != nil {
		t.Fatalf("CountPosts unknown category: %v", err)
	}
	if none != 0 {
		t.Errorf("CountPosts unknown category: got %d, want 0", none)
	}
}

func testUpdatePost(t *testing.T, s store.Store) {
	ctx := context.Background()
	author := mustUser(t, s)
	cat := mustCategory(t, s, "Update")
	p := mustPost(t, s, author, cat, "Before")
	other := mustPost(t, s, author, cat, "Other")

	title := "After"
	published := true
	tags := []string{"edited"}
	updated, err := s.UpdatePost(ctx, p.ID, store.PostPatch{Title: &title, IsPublished: &published, Tags: &tags})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Title != "After" || !updated.IsPublished {
		t.Errorf("UpdatePost fields: got %+v", updated)
	}
	if updated.Content != p.Content || updated.Slug != p.Slug || updated.CategoryID != cat.ID {
		t.Errorf("UpdatePost touched unset fields: got %+v, want content/slug/category of %+v", updated, p)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "edited" {
		t.Errorf("UpdatePost tags: got %v", updated.Tags)
	}
	if updated.UpdatedAt.Before(p.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v < %v", updated.UpdatedAt, p.UpdatedAt)
	}

	reread, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost after update: %v", err)
	}
	if reread.Title != "After" {
		t.Errorf("update not persisted: got %q", reread.Title)
	}

	taken := other.Slug
	if _, err := s.UpdatePost(ctx, p.ID, store.PostPatch{Slug: &taken}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("UpdatePost duplicate slug: got %v, want ErrDuplicate", err)
	}

	if _, err := s.UpdatePost(ctx, models.NewID(), store.PostPatch{Title: &title}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdatePost unknown: got %v, want ErrNotFound", err)
	}
}

func testDeletePost(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := mustPost(t, s, mustUser(t, s), mustCategory(t, s, "Delete"), "Doomed")

	if err := s.DeletePost(ctx, p.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := s.DeletePost(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeletePost: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetPost(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPost after delete: got %v, want ErrNotFound", err)
	}
}

func testIncrementViews(t *testing.T, s store.Store) {
	ctx := context.Background()
	p := mustPost(t, s, mustUser(t, s), mustCategory(t, s, "Views"), "Popular")

	for i := 0; i < 3; i++ {
		if err := s.IncrementPostViews(ctx, p.ID); err != nil {
			t.Fatalf("IncrementPostViews: %v", err)
		}
	}

	got, err := s.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.ViewCount != 3 {
		t.Errorf("view count: got %d, want 3", got.ViewCount)
	}

	if err := s.IncrementPostViews(ctx, models.NewID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("IncrementPostViews unknown: got %v, want ErrNotFound", err)
	}
}
