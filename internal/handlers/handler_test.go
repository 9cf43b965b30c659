// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store so no services are required.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/respond"
	"inkwell/internal/slug"
	"inkwell/internal/store/memory"
)

const testMaxBody = 10 * 1024

// recordingViews implements ViewRecorder and remembers every id.
type recordingViews struct {
	mu  sync.Mutex
	ids []string
}

func (v *recordingViews) Enqueue(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids = append(v.ids, id)
	return true
}

func (v *recordingViews) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.ids)
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Store      *memory.Store
	Views      *recordingViews
	Service    *auth.Service
	Posts      *Posts
	Categories *Categories
	Auth       *Auth
	Hook       *test.Hook
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, hook := test.NewNullLogger()
	st := memory.New()
	views := &recordingViews{}
	svc := auth.NewService(st, auth.NewTokenIssuer("test-secret", time.Hour), bcrypt.MinCost)

	return &testEnv{
		Store:      st,
		Views:      views,
		Service:    svc,
		Posts:      NewPosts(st, st, views, log, testMaxBody),
		Categories: NewCategories(st, log, testMaxBody),
		Auth:       NewAuth(svc, log, testMaxBody),
		Hook:       hook,
	}
}

// category creates a category directly in the store.
func (e *testEnv) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Description: name + " posts"}
	if err := e.Store.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

// user registers an account and returns it with its token.
func (e *testEnv) user(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	token, u, err := e.Service.Register(context.Background(), "Test User", email, "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u, token
}

// post creates a post directly in the store.
func (e *testEnv) post(t *testing.T, title, categoryID, authorID string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:      title,
		Content:    "<p>" + title + "</p>",
		Slug:       slug.Generate(title),
		AuthorID:   authorID,
		CategoryID: categoryID,
	}
	if err := e.Store.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ctxWithClaims adds verified claims to a request using the middleware key.
func ctxWithClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

// decodeEnvelope parses an error response body.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var env respond.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if env.Success {
		t.Errorf("envelope success: got true, want false")
	}
	return env
}

// decodeBody parses a success response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}
