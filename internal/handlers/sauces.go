package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/auth"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/services"
	pkghttp "github.com/roy-raphael/DW-P6-Piiquante/pkg/http"
)

// maxUploadSize bounds the in-memory portion of multipart sauce uploads.
const maxUploadSize = 10 << 20 // 10 MB

// ImageSaver persists an uploaded image and returns its public filename.
type ImageSaver interface {
	Save(r io.Reader, contentType string) (string, error)
}

// SauceServiceInterface defines the interface for sauce business logic
type SauceServiceInterface interface {
	Create(ctx context.Context, userID, imageURL string, input services.SauceInput) (*models.Sauce, error)
	Get(ctx context.Context, id string) (*models.Sauce, error)
	List(ctx context.Context) ([]*models.Sauce, error)
	Update(ctx context.Context, sauce *models.Sauce, newImageURL string, input services.SauceInput) error
	Delete(ctx context.Context, sauce *models.Sauce) error
	Vote(ctx context.Context, sauceID, userID string, vote int) (*models.Sauce, error)
}

// SauceHandler handles sauce-related HTTP requests
type SauceHandler struct {
	service SauceServiceInterface
	images  ImageSaver
}

// NewSauceHandler creates a new SauceHandler
func NewSauceHandler(service SauceServiceInterface, images ImageSaver) *SauceHandler {
	return &SauceHandler{service: service, images: images}
}

// SauceRequest is the sauce payload carried either as the "sauce" multipart
// part or directly as the JSON body of an image-less update.
type SauceRequest struct {
	Name         string `json:"name" validate:"required"`
	Manufacturer string `json:"manufacturer" validate:"required"`
	Description  string `json:"description" validate:"required"`
	MainPepper   string `json:"mainPepper" validate:"required"`
	Heat         int    `json:"heat" validate:"required,gte=1,lte=10"`
}

// VoteRequest is the body of a like/dislike request
type VoteRequest struct {
	UserID string `json:"userId" validate:"required"`
	Like   int    `json:"like" validate:"oneof=-1 0 1"`
}

// SauceResponse mirrors the wire format the storefront expects
type SauceResponse struct {
	ID            string   `json:"_id"`
	UserID        string   `json:"userId"`
	Name          string   `json:"name"`
	Manufacturer  string   `json:"manufacturer"`
	Description   string   `json:"description"`
	MainPepper    string   `json:"mainPepper"`
	ImageURL      string   `json:"imageUrl"`
	Heat          int      `json:"heat"`
	Likes         int      `json:"likes"`
	Dislikes      int      `json:"dislikes"`
	UsersLiked    []string `json:"usersLiked"`
	UsersDisliked []string `json:"usersDisliked"`
}

func toSauceResponse(s *models.Sauce) SauceResponse {
	liked := s.UsersLiked
	if liked == nil {
		liked = []string{}
	}
	disliked := s.UsersDisliked
	if disliked == nil {
		disliked = []string{}
	}
	return SauceResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Name:          s.Name,
		Manufacturer:  s.Manufacturer,
		Description:   s.Description,
		MainPepper:    s.MainPepper,
		ImageURL:      s.ImageURL,
		Heat:          s.Heat,
		Likes:         s.Likes,
		Dislikes:      s.Dislikes,
		UsersLiked:    liked,
		UsersDisliked: disliked,
	}
}

// List returns every sauce in the catalog
func (h *SauceHandler) List(w http.ResponseWriter, r *http.Request) {
	sauces, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	out := make([]SauceResponse, 0, len(sauces))
	for _, s := range sauces {
		out = append(out, toSauceResponse(s))
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}

// Get returns a single sauce by ID
func (h *SauceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sauce, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No sauce found with this ID")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toSauceResponse(sauce))
}

// Create handles new sauce submissions (multipart: "sauce" JSON + "image" file)
func (h *SauceHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r)
	if principal == nil {
		pkghttp.WriteUnauthorized(w, "Invalid request")
		return
	}

	req, imageURL, err := h.parseMultipartSauce(r, true)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input := services.SauceInput{
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		Description:  req.Description,
		MainPepper:   req.MainPepper,
		Heat:         req.Heat,
	}

	if _, err := h.service.Create(r.Context(), principal.UserID, imageURL, input); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Sauce created"})
}

// Update modifies a sauce. The body is either multipart (new image) or plain
// JSON (fields only). The ownership gate has already loaded the sauce.
func (h *SauceHandler) Update(w http.ResponseWriter, r *http.Request) {
	sauce := auth.GetSauce(r)
	if sauce == nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	var req SauceRequest
	var newImageURL string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, imageURL, err := h.parseMultipartSauce(r, true)
		if err != nil {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		req = parsed
		newImageURL = imageURL
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid request body")
			return
		}
		if err := ValidateRequest(req); err != nil {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
	}

	input := services.SauceInput{
		Name:         req.Name,
		Manufacturer: req.Manufacturer,
		Description:  req.Description,
		MainPepper:   req.MainPepper,
		Heat:         req.Heat,
	}

	if err := h.service.Update(r.Context(), sauce, newImageURL, input); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Sauce updated"})
}

// Delete removes a sauce and its stored image
func (h *SauceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sauce := auth.GetSauce(r)
	if sauce == nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if err := h.service.Delete(r.Context(), sauce); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Sauce deleted"})
}

// Like registers a like, dislike, or vote withdrawal for the caller
func (h *SauceHandler) Like(w http.ResponseWriter, r *http.Request) {
	principal := auth.GetPrincipal(r)
	if principal == nil {
		pkghttp.WriteUnauthorized(w, "Invalid request")
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")

	if _, err := h.service.Vote(r.Context(), id, principal.UserID, req.Like); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No sauce found with this ID")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	var message string
	switch req.Like {
	case models.VoteLike:
		message = "Sauce liked"
	case models.VoteDislike:
		message = "Sauce disliked"
	default:
		message = "Vote removed"
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

// parseMultipartSauce extracts the "sauce" JSON part and, when imageRequired
// or present, stores the "image" part and returns its absolute URL.
func (h *SauceHandler) parseMultipartSauce(r *http.Request, imageRequired bool) (SauceRequest, string, error) {
	var req SauceRequest

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return req, "", fmt.Errorf("invalid multipart form: %w", err)
	}

	raw := r.FormValue("sauce")
	if raw == "" {
		return req, "", fmt.Errorf("missing sauce payload")
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, "", fmt.Errorf("invalid sauce payload")
	}
	if err := ValidateRequest(req); err != nil {
		return req, "", err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if imageRequired {
			return req, "", fmt.Errorf("missing image file")
		}
		return req, "", nil
	}
	defer file.Close()

	filename, err := h.images.Save(file, header.Header.Get("Content-Type"))
	if err != nil {
		return req, "", fmt.Errorf("unsupported image: %w", err)
	}

	return req, fmt.Sprintf("%s/images/%s", pkghttp.RequestBaseURL(r), filename), nil
}
