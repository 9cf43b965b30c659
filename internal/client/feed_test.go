package client

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"
)

func TestPostFeedMirrorsServer(t *testing.T) {
	s := newTestServer(t)
	cat := s.category(t, "Food")
	ctx, session := s.signIn(t, "feed@example.com")
	author := session.User().ID
	feed := NewPostFeed(s.client)

	for i := 0; i < 3; i++ {
		if _, err := s.client.Posts().Create(ctx, PostInput{
			Title: fmt.Sprintf("Recipe %d", i), Content: "c", Author: author, Category: cat.ID,
		}); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := feed.Fetch(ctx, ListOptions{Limit: 2}); err != nil {
		t.Fatal(err)
	}
	if got := feed.Posts(); len(got) != 2 {
		t.Fatalf("fetch: got %d posts, want 2", len(got))
	}

	created, err := feed.Create(ctx, PostInput{Title: "Fresh", Content: "c", Author: author, Category: cat.ID})
	if err != nil {
		t.Fatal(err)
	}
	posts := feed.Posts()
	if len(posts) != 3 || posts[0].ID != created.ID {
		t.Fatalf("create should prepend: %+v", titles(posts))
	}

	title := "Fresh, Revised"
	if _, err := feed.Update(ctx, created.ID, PostUpdate{Title: &title}); err != nil {
		t.Fatal(err)
	}
	posts = feed.Posts()
	if posts[0].Title != title || len(posts) != 3 {
		t.Fatalf("update should replace in place: %+v", titles(posts))
	}

	if err := feed.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	for _, p := range feed.Posts() {
		if p.ID == created.ID {
			t.Fatal("delete left the post in the feed")
		}
	}
	if len(feed.Posts()) != 2 {
		t.Errorf("after delete: got %d posts, want 2", len(feed.Posts()))
	}

	if _, err := feed.Fetch(ctx, ListOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(feed.Posts()) != 3 {
		t.Errorf("refetch should replace: got %d posts", len(feed.Posts()))
	}
	if feed.Err() != nil {
		t.Errorf("err after success: %v", feed.Err())
	}
}

func TestPostFeedFailureKeepsState(t *testing.T) {
	s := newTestServer(t)
	cat := s.category(t, "Travel")
	ctx, session := s.signIn(t, "keep@example.com")
	feed := NewPostFeed(s.client)

	if _, err := feed.Create(ctx, PostInput{Title: "Kept", Content: "c", Author: session.User().ID, Category: cat.ID}); err != nil {
		t.Fatal(err)
	}

	err := feed.Delete(ctx, models.NewID())
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("got %v, want 404", err)
	}
	if feed.Err() == nil {
		t.Error("Err should report the failed call")
	}
	if len(feed.Posts()) != 1 {
		t.Errorf("failed delete changed local state: %d posts", len(feed.Posts()))
	}

	// Signed out, a create is rejected and nothing is prepended.
	signedOut := context.Background()
	if _, err := feed.Create(signedOut, PostInput{Title: "Nope", Content: "c", Author: models.NewID(), Category: cat.ID}); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("got %v, want 401", err)
	}
	if len(feed.Posts()) != 1 {
		t.Errorf("rejected create changed local state")
	}
}

func TestPostFeedCategories(t *testing.T) {
	s := newTestServer(t)
	s.category(t, "Lifestyle")
	s.category(t, "Technology")
	feed := NewPostFeed(s.client)

	if _, err := feed.FetchCategories(context.Background()); err != nil {
		t.Fatal(err)
	}
	cats := feed.Categories()
	if len(cats) != 2 || cats[0].Name != "Lifestyle" {
		t.Errorf("got %+v", cats)
	}
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}
