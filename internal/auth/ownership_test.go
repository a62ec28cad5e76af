package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
)

type fakeSauceLoader struct {
	sauces map[string]*models.Sauce
	err    error
}

func (f *fakeSauceLoader) GetByID(_ context.Context, id string) (*models.Sauce, error) {
	if f.err != nil {
		return nil, f.err
	}
	sauce, ok := f.sauces[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return sauce, nil
}

func ownershipRequest(t *testing.T, ts *TokenService, userID, sauceID string) *http.Request {
	t.Helper()

	token, err := ts.Sign(userID, "alice@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/sauces/"+sauceID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func mountOwnership(loader SauceLoader, ts *TokenService, captured **models.Sauce) http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware(ts))
	r.Group(func(r chi.Router) {
		r.Use(RequireSauceOwnership(loader))
		r.Delete("/api/sauces/{id}", func(w http.ResponseWriter, req *http.Request) {
			if captured != nil {
				*captured = GetSauce(req)
			}
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestRequireSauceOwnership_OwnerAllowed(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)
	loader := &fakeSauceLoader{sauces: map[string]*models.Sauce{
		"s1": {ID: "s1", UserID: "user-123", Name: "Hot Stuff"},
	}}

	var got *models.Sauce
	handler := mountOwnership(loader, ts, &got)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, ownershipRequest(t, ts, "user-123", "s1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "Hot Stuff", got.Name)
}

func TestRequireSauceOwnership_NotOwner(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)
	loader := &fakeSauceLoader{sauces: map[string]*models.Sauce{
		"s1": {ID: "s1", UserID: "someone-else"},
	}}

	handler := mountOwnership(loader, ts, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, ownershipRequest(t, ts, "user-123", "s1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized request")
}

func TestRequireSauceOwnership_NotFound(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)
	loader := &fakeSauceLoader{sauces: map[string]*models.Sauce{}}

	handler := mountOwnership(loader, ts, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, ownershipRequest(t, ts, "user-123", "nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No sauce found with this ID")
}

func TestRequireSauceOwnership_LoaderError(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)
	loader := &fakeSauceLoader{err: models.ErrInternalServer}

	handler := mountOwnership(loader, ts, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, ownershipRequest(t, ts, "user-123", "s1"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
