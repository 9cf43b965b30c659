package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
)

func TestCategoriesList_SortedByName(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"Travel", "Food", "Programming"} {
		env.category(t, name)
	}

	rec := httptest.NewRecorder()
	env.Categories.List(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var got []models.Category
	decodeBody(t, rec, &got)

	want := []string{"Food", "Programming", "Travel"}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestCategoriesList_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Categories.List(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if body := rec.Body.String(); body != "[]\n" && body != "[]" {
		t.Errorf("body: got %q, want []", body)
	}
}

func TestCategoriesCreate(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Categories.Create(rec, jsonRequest(http.MethodPost, "/api/categories", map[string]string{
		"name":        "  Science ",
		"description": "Experiments",
	}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var got models.Category
	decodeBody(t, rec, &got)
	if got.Name != "Science" || got.Description != "Experiments" || !models.IsID(got.ID) {
		t.Errorf("got %+v", got)
	}
}

func TestCategoriesCreate_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.category(t, "Food")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"duplicate", map[string]string{"name": "Food"}, http.StatusBadRequest, "Category already exists"},
		{"duplicate after trim", map[string]string{"name": " Food "}, http.StatusBadRequest, "Category already exists"},
		{"missing name", map[string]string{}, http.StatusBadRequest, ValidationMessage},
		{"blank name", map[string]string{"name": "   "}, http.StatusBadRequest, ValidationMessage},
		{"no body", nil, http.StatusBadRequest, "Request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Categories.Create(rec, jsonRequest(http.MethodPost, "/api/categories", tt.body))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeEnvelope(t, rec); got.Error != tt.wantError {
				t.Errorf("error: got %q, want %q", got.Error, tt.wantError)
			}
		})
	}
}
