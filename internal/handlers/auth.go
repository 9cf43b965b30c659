package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/respond"
)

// Auth groups the account endpoints.
type Auth struct {
	service *auth.Service
	log     logrus.FieldLogger
	maxBody int64
}

// NewAuth creates the account handler group.
func NewAuth(service *auth.Service, log logrus.FieldLogger, maxBody int64) *Auth {
	return &Auth{service: service, log: log, maxBody: maxBody}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,bcryptlen"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an author account and signs the new user in.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	token, user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	h.log.WithField("user", user.ID).Info("user registered")
	respond.JSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// Login exchanges credentials for a token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the account the bearer token belongs to.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		respond.Error(w, r, h.log, apperr.Auth("Not authorized, no token"))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims)
	if err != nil {
		respond.Error(w, r, h.log, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"user": user})
}
