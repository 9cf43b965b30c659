// Package memory is an in-process Store used for development runs without a
// database and as the backend for handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Store keeps every entity in maps guarded by one mutex.
type Store struct {
	mu         sync.RWMutex
	users      map[string]models.User
	categories map[string]models.Category
	posts      map[string]models.Post
	// seq orders posts created within the same clock tick.
	seq     map[string]int64
	nextSeq int64
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:      make(map[string]models.User),
		categories: make(map[string]models.Category),
		posts:      make(map[string]models.Post),
		seq:        make(map[string]int64),
		now:        time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}

	now := s.now().UTC()
	u.ID = models.NewID()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return store.ErrDuplicate
		}
	}

	now := s.now().UTC()
	c.ID = models.NewID()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetCategoryByName(_ context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *Store) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(p.Slug, "") {
		return store.ErrDuplicate
	}

	now := s.now().UTC()
	p.ID = models.NewID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Tags = append([]string(nil), p.Tags...)
	p.Author, p.Category = nil, nil

	s.posts[p.ID] = *p
	s.nextSeq++
	s.seq[p.ID] = s.nextSeq
	return nil
}

func (s *Store) GetPost(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	s.populate(&p)
	return &p, nil
}

func (s *Store) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			s.populate(&p)
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListPosts(_ context.Context, filter store.PostFilter, offset, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return s.seq[a.ID] > s.seq[b.ID]
	})

	if offset >= len(matched) {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]models.Post, 0, end-offset)
	for _, p := range matched[offset:end] {
		s.populate(&p)
		page = append(page, p)
	}
	return page, nil
}

func (s *Store) CountPosts(_ context.Context, filter store.PostFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matching(filter))), nil
}

func (s *Store) UpdatePost(_ context.Context, id string, patch store.PostPatch) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Slug != nil && s.slugTaken(*patch.Slug, id) {
		return nil, store.ErrDuplicate
	}

	patch.Apply(&p)
	p.UpdatedAt = s.now().UTC()
	s.posts[id] = p
	return &p, nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.posts, id)
	delete(s.seq, id)
	return nil
}

func (s *Store) IncrementPostViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ViewCount++
	s.posts[id] = p
	return nil
}

// matching returns copies of the posts selected by filter. Callers hold mu.
func (s *Store) matching(filter store.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range s.posts {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// slugTaken reports whether another post already uses slug. Callers hold mu.
func (s *Store) slugTaken(slug, exceptID string) bool {
	for id, p := range s.posts {
		if id != exceptID && p.Slug == slug {
			return true
		}
	}
	return false
}

// populate resolves author and category references. Callers hold mu.
func (s *Store) populate(p *models.Post) {
	if u, ok := s.users[p.AuthorID]; ok {
		p.Author = u.Ref()
	}
	if c, ok := s.categories[p.CategoryID]; ok {
		p.Category = c.Ref()
	}
	p.Tags = append([]string(nil), p.Tags...)
}
