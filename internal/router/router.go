// Package router sets up all HTTP routes and middleware chains for the blog
// API. Public reads, authenticated writes and the account endpoints each get
// their own middleware stack.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"inkwell/internal/auth"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// Limit is a request budget per client IP.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Deps carries everything the router wires together.
type Deps struct {
	Log        logrus.FieldLogger
	Production bool
	// AllowAllOrigins lifts the CORS allow-list outside production.
	AllowAllOrigins bool
	Origins         []string
	// ProtectDelete puts post deletion behind a bearer token.
	ProtectDelete bool

	APILimit  Limit
	AuthLimit Limit
	// TrustProxy keys rate limits on X-Forwarded-For and X-Real-IP.
	TrustProxy bool

	Verifier   auth.Verifier
	Posts      *handlers.Posts
	Categories *handlers.Categories
	Auth       *handlers.Auth
	Uploads    *handlers.Uploads
	Meta       *handlers.Meta
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer(d.Log))
	r.Use(middleware.SecureHeaders(d.Production))
	r.Use(middleware.CORS(d.AllowAllOrigins, d.Origins))
	r.Use(middleware.Logger(d.Log))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", d.Meta.Health)

	requireAuth := middleware.RequireAuth(d.Verifier, d.Log)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.APILimit.Requests, d.APILimit.Window, d.TrustProxy))

		r.Get("/server-info", d.Meta.ServerInfo)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/{idOrSlug}", d.Posts.Get)

			r.With(requireAuth).Post("/", d.Posts.Create)
			r.With(requireAuth).Put("/{id}", d.Posts.Update)

			if d.ProtectDelete {
				r.With(requireAuth).Delete("/{id}", d.Posts.Delete)
			} else {
				r.Delete("/{id}", d.Posts.Delete)
			}
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.Post("/", d.Categories.Create)
		})

		// Account endpoints carry a stricter budget on top of the API one.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(d.AuthLimit.Requests, d.AuthLimit.Window, d.TrustProxy))

			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.With(requireAuth).Get("/me", d.Auth.Me)
		})

		r.With(requireAuth).Post("/uploads", d.Uploads.Create)
	})

	return r
}

