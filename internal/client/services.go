package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"inkwell/internal/models"
)

// ListOptions selects a page of posts. Zero values use the server defaults.
type ListOptions struct {
	Page     int
	Limit    int
	Category string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	return q
}

// PostPage is one page of the post listing.
type PostPage struct {
	Posts []models.Post `json:"posts"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

// PostInput is the body of a post create.
type PostInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Author        string   `json:"author"`
	Category      string   `json:"category"`
	Excerpt       string   `json:"excerpt,omitempty"`
	Slug          string   `json:"slug,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
	IsPublished   bool     `json:"isPublished"`
}

// PostUpdate is the body of a partial post update. Nil fields are left
// unchanged on the server.
type PostUpdate struct {
	Title         *string   `json:"title,omitempty"`
	Content       *string   `json:"content,omitempty"`
	Author        *string   `json:"author,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	Slug          *string   `json:"slug,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	FeaturedImage *string   `json:"featuredImage,omitempty"`
	IsPublished   *bool     `json:"isPublished,omitempty"`
}

// PostService wraps the /posts endpoints.
type PostService struct {
	c *Client
}

// List fetches one page of posts, newest first.
func (s *PostService) List(ctx context.Context, opts ListOptions) (*PostPage, error) {
	var page PostPage
	if err := s.c.do(ctx, http.MethodGet, "/posts", opts.query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a post by id or slug.
func (s *PostService) Get(ctx context.Context, idOrSlug string) (*models.Post, error) {
	var p models.Post
	if err := s.c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(idOrSlug), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores a new post. Requires a signed-in session.
func (s *PostService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	var p models.Post
	if err := s.c.do(ctx, http.MethodPost, "/posts", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update changes the supplied fields of a post. Requires a signed-in session.
func (s *PostService) Update(ctx context.Context, id string, in PostUpdate) (*models.Post, error) {
	var p models.Post
	if err := s.c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

// CategoryService wraps the /categories endpoints.
type CategoryService struct {
	c *Client
}

// List fetches every category sorted by name.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := s.c.do(ctx, http.MethodGet, "/categories", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*models.Category, error) {
	in := map[string]string{"name": name, "description": description}
	var cat models.Category
	if err := s.c.do(ctx, http.MethodPost, "/categories", nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// AuthResult is the response of register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService wraps the /auth endpoints and keeps the session in ctx in
// step with them.
type AuthService struct {
	c *Client
}

// Register creates an account. The session is not signed in; call Login.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var res AuthResult
	if err := s.c.do(ctx, http.MethodPost, "/auth/register", nil, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login signs in and saves the token and user into the session in ctx.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	in := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, in, &res); err != nil {
		return nil, err
	}
	if res.Token != "" {
		if err := SessionFrom(ctx).Save(res.Token, res.User); err != nil {
			return &res, err
		}
	}
	return &res, nil
}

// Logout clears the session in ctx.
func (s *AuthService) Logout(ctx context.Context) error {
	return SessionFrom(ctx).Clear()
}

// CurrentUser returns the user saved in the session, without a request.
func (s *AuthService) CurrentUser(ctx context.Context) *models.User {
	return SessionFrom(ctx).User()
}

// Me asks the server who the session's token belongs to.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var res struct {
		User *models.User `json:"user"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}
