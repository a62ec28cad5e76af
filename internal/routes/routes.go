package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/auth"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/handlers"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	sauceHandler *handlers.SauceHandler,
	tokenService *auth.TokenService,
	sauceLoader auth.SauceLoader,
	imagesDir string,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	// Protected routes - authentication required
	router.Route("/api/sauces", func(r chi.Router) {
		r.Use(auth.Middleware(tokenService))

		r.Get("/", sauceHandler.List)
		r.Post("/", sauceHandler.Create)
		r.Get("/{id}", sauceHandler.Get)
		r.Post("/{id}/like", sauceHandler.Like)

		// Owner-only sauce mutations
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSauceOwnership(sauceLoader))
			r.Put("/{id}", sauceHandler.Update)
			r.Delete("/{id}", sauceHandler.Delete)
		})
	})

	// Uploaded sauce images
	fileServer := http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir)))
	router.Get("/images/*", fileServer.ServeHTTP)
}
