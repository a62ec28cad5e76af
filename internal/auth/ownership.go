package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
	pkghttp "github.com/roy-raphael/DW-P6-Piiquante/pkg/http"
)

const (
	// SauceContextKey is the key for the sauce loaded by the ownership gate
	SauceContextKey contextKey = "sauce"
)

// SauceLoader fetches a sauce by ID for the ownership check
type SauceLoader interface {
	GetByID(ctx context.Context, id string) (*models.Sauce, error)
}

// RequireSauceOwnership loads the sauce named in the URL and allows the
// request only when the authenticated principal owns it. The loaded sauce
// rides the request context so the downstream handler skips a second lookup.
// Must be mounted after Middleware.
func RequireSauceOwnership(loader SauceLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r)
			if principal == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			sauceID := chi.URLParam(r, "id")

			sauce, err := loader.GetByID(r.Context(), sauceID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteNotFound(w, "No sauce found with this ID")
					return
				}
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if sauce.UserID != principal.UserID {
				pkghttp.WriteForbidden(w, "Unauthorized request")
				return
			}

			ctx := context.WithValue(r.Context(), SauceContextKey, sauce)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSauce extracts the sauce loaded by RequireSauceOwnership from the
// request context
func GetSauce(r *http.Request) *models.Sauce {
	sauce, ok := r.Context().Value(SauceContextKey).(*models.Sauce)
	if !ok {
		return nil
	}
	return sauce
}
