package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/respond"
	"inkwell/internal/store"
)

// Categories groups the category endpoints.
type Categories struct {
	categories store.CategoryStore
	log        logrus.FieldLogger
	maxBody    int64
}

// NewCategories creates the category handler group.
func NewCategories(categories store.CategoryStore, log logrus.FieldLogger, maxBody int64) *Categories {
	return &Categories{categories: categories, log: log, maxBody: maxBody}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=50"`
	Description string `json:"description" validate:"max=500"`
}

// List returns every category sorted by name.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.ListCategories(r.Context())
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// Create adds a category with a unique name.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	cat := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.categories.CreateCategory(r.Context(), cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = apperr.Conflict("Category already exists", http.StatusBadRequest)
		}
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, cat)
}
