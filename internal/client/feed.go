package client

import (
	"context"
	"sync"

	"inkwell/internal/models"
)

// PostFeed keeps a local copy of the posts and categories a view shows and
// updates it from each successful call: a listing replaces the posts, a
// create prepends, an update replaces in place and a delete removes. Failed
// calls leave the local state unchanged and are remembered in Err.
type PostFeed struct {
	posts      *PostService
	categories *CategoryService

	mu   sync.RWMutex
	list []models.Post
	cats []models.Category
	err  error
}

// NewPostFeed creates an empty feed backed by c.
func NewPostFeed(c *Client) *PostFeed {
	return &PostFeed{posts: c.Posts(), categories: c.Categories()}
}

// Posts returns a copy of the local posts.
func (f *PostFeed) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Post(nil), f.list...)
}

// Categories returns a copy of the local categories.
func (f *PostFeed) Categories() []models.Category {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Category(nil), f.cats...)
}

// Err returns the error of the last call, or nil if it succeeded.
func (f *PostFeed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Fetch loads a page and replaces the local posts with it.
func (f *PostFeed) Fetch(ctx context.Context, opts ListOptions) (*PostPage, error) {
	page, err := f.posts.List(ctx, opts)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		return nil, err
	}
	f.list = append([]models.Post(nil), page.Posts...)
	return page, nil
}

// Get fetches a single post. The local list is not touched.
func (f *PostFeed) Get(ctx context.Context, idOrSlug string) (*models.Post, error) {
	p, err := f.posts.Get(ctx, idOrSlug)
	f.setErr(err)
	return p, err
}

// Create stores a post and prepends it locally.
func (f *PostFeed) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	p, err := f.posts.Create(ctx, in)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		return nil, err
	}
	f.list = append([]models.Post{*p}, f.list...)
	return p, nil
}

// Update changes a post and replaces the local entry with the same id.
func (f *PostFeed) Update(ctx context.Context, id string, in PostUpdate) (*models.Post, error) {
	p, err := f.posts.Update(ctx, id, in)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		return nil, err
	}
	for i := range f.list {
		if f.list[i].ID == p.ID {
			f.list[i] = *p
		}
	}
	return p, nil
}

// Delete removes a post on the server and locally.
func (f *PostFeed) Delete(ctx context.Context, id string) error {
	err := f.posts.Delete(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		return err
	}
	kept := f.list[:0]
	for _, p := range f.list {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.list = kept
	return nil
}

// FetchCategories loads and replaces the local categories.
func (f *PostFeed) FetchCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := f.categories.List(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	if err != nil {
		return nil, err
	}
	f.cats = append([]models.Category(nil), cats...)
	return cats, nil
}

func (f *PostFeed) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}
