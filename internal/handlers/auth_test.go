package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/models"
)

func TestAuthRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "Ada@Example.com",
		"password": "analytical",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var got authResponse
	decodeBody(t, rec, &got)

	if got.Token == "" {
		t.Error("expected a token")
	}
	if got.User == nil || got.User.Email != "ada@example.com" || got.User.Role != models.RoleAuthor {
		t.Errorf("user: got %+v", got.User)
	}
	if strings.Contains(rec.Body.String(), "analytical") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Errorf("response leaks credentials: %s", rec.Body.String())
	}

	claims, err := env.Service.Tokens().Verify(got.Token)
	if err != nil || claims.UserID() != got.User.ID {
		t.Errorf("token does not verify to the new user: %v", err)
	}
}

func TestAuthRegister_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "taken@example.com")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantError  string
		wantFields []string
	}{
		{
			"duplicate email",
			map[string]string{"name": "Dup", "email": "TAKEN@example.com", "password": "secret1"},
			http.StatusConflict, "User already exists", nil,
		},
		{
			"short password",
			map[string]string{"name": "Bob", "email": "bob@example.com", "password": "123"},
			http.StatusBadRequest, ValidationMessage, []string{"password"},
		},
		{
			"password over 72 bytes",
			map[string]string{"name": "Eve", "email": "eve@example.com", "password": strings.Repeat("é", 40)},
			http.StatusBadRequest, ValidationMessage, []string{"password"},
		},
		{
			"everything missing",
			map[string]string{},
			http.StatusBadRequest, ValidationMessage, []string{"name", "email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Auth.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register", tt.body))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decodeEnvelope(t, rec)
			if got.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", got.Error, tt.wantError)
			}
			if len(got.Errors) != len(tt.wantFields) {
				t.Fatalf("fields: got %+v, want %v", got.Errors, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if got.Errors[i].Field != f {
					t.Errorf("field %d: got %q, want %q", i, got.Errors[i].Field, f)
				}
			}
		})
	}
}

// TestAuthRegister_MultibytePassword checks the length rule counts bytes, so
// 40 two-byte runes are rejected before hashing.
func TestAuthRegister_MultibytePassword(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Eve",
		"email":    "eve@example.com",
		"password": strings.Repeat("é", 40),
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
	got := decodeEnvelope(t, rec)
	if len(got.Errors) != 1 || got.Errors[0].Message != "Password must be at most 72 bytes" {
		t.Errorf("errors: got %+v", got.Errors)
	}

	// 36 two-byte runes is exactly 72 bytes.
	rec = httptest.NewRecorder()
	env.Auth.Register(rec, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Eve",
		"email":    "eve@example.com",
		"password": strings.Repeat("é", 36),
	}))
	if rec.Code != http.StatusCreated {
		t.Errorf("72-byte password: got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestAuthLogin(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.user(t, "login@example.com")

	rec := httptest.NewRecorder()
	env.Auth.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "LOGIN@example.com",
		"password": "secret1",
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var got authResponse
	decodeBody(t, rec, &got)
	if got.Token == "" || got.User == nil || got.User.ID != u.ID {
		t.Errorf("got %+v", got)
	}
}

// TestAuthLogin_FailuresIndistinguishable verifies wrong password and
// unknown email produce byte-identical responses.
func TestAuthLogin_FailuresIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "known@example.com")

	attempt := func(email, password string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		env.Auth.Login(rec, jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email": email, "password": password,
		}))
		return rec
	}

	wrong := attempt("known@example.com", "not-the-password")
	unknown := attempt("nobody@example.com", "secret1")

	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d and %d, want 401", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ:\n%s\n%s", wrong.Body.String(), unknown.Body.String())
	}
	if got := decodeEnvelope(t, wrong); got.Error != "Invalid credentials" {
		t.Errorf("error: got %q", got.Error)
	}
}

func TestAuthMe(t *testing.T) {
	env := newTestEnv(t)
	u, token := env.user(t, "me@example.com")

	claims, err := env.Service.Tokens().Verify(token)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	env.Auth.Me(rec, ctxWithClaims(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), claims))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var got struct {
		User models.User `json:"user"`
	}
	decodeBody(t, rec, &got)
	if got.User.ID != u.ID || got.User.Email != "me@example.com" {
		t.Errorf("user: got %+v", got.User)
	}
}

func TestAuthMe_NoClaims(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

// TestAuthMe_DeletedUser covers a valid token whose account no longer exists.
func TestAuthMe_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ghost := &models.User{ID: models.NewID(), Name: "Ghost", Email: "ghost@example.com", Role: models.RoleAuthor}
	token, err := env.Service.Tokens().Issue(ghost)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := env.Service.Tokens().Verify(token)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	env.Auth.Me(rec, ctxWithClaims(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), claims))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	if got := decodeEnvelope(t, rec); got.Error != "Not authorized, user not found" {
		t.Errorf("error: got %q", got.Error)
	}
}
