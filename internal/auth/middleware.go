package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
	pkghttp "github.com/roy-raphael/DW-P6-Piiquante/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the authenticated principal in context
	UserContextKey contextKey = "user"
)

// Principal is the authenticated identity bound to a request
type Principal struct {
	UserID string
	Email  string
}

// maxBodyPeek bounds how much of a request body the middleware will buffer
// while looking for an explicit userId claim
const maxBodyPeek = 1 << 20

// Middleware validates the bearer token and injects the authenticated
// principal into the request context. A JSON body carrying a userId that
// conflicts with the token's identity is rejected outright.
func Middleware(ts *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "No token provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "No token provided")
				return
			}

			claims, err := ts.Verify(parts[1], "")
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			if err := checkBodyIdentity(r, claims.UserID); err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid user ID")
				return
			}

			principal := &Principal{UserID: claims.UserID, Email: claims.Subject}
			ctx := context.WithValue(r.Context(), UserContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// checkBodyIdentity peeks at a JSON body for an explicit userId field and
// compares it to the token's identity. The body is restored for downstream
// handlers.
func checkBodyIdentity(r *http.Request, userID string) error {
	if r.Body == nil || !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyPeek))
	if err != nil {
		return models.ErrIdentityMismatch
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		UserID string `json:"userId"`
	}
	// a body that is not JSON or carries no userId is handled downstream
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}
	if probe.UserID != "" && probe.UserID != userID {
		return models.ErrIdentityMismatch
	}

	return nil
}

// GetPrincipal extracts the authenticated principal from the request context
func GetPrincipal(r *http.Request) *Principal {
	principal, ok := r.Context().Value(UserContextKey).(*Principal)
	if !ok {
		return nil
	}
	return principal
}
