package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
)

// SauceRepository defines the persistence operations for sauces
type SauceRepository interface {
	Create(ctx context.Context, sauce *models.Sauce) (*models.Sauce, error)
	GetByID(ctx context.Context, id string) (*models.Sauce, error)
	List(ctx context.Context) ([]*models.Sauce, error)
	Update(ctx context.Context, sauce *models.Sauce) error
	Delete(ctx context.Context, id string) error
	ApplyVote(ctx context.Context, sauceID, userID string, vote int) (*models.Sauce, error)
}

// ImageRemover deletes stored image files that no sauce references anymore
type ImageRemover interface {
	Remove(filename string) error
	FilenameFromURL(imageURL string) string
}

// SauceService handles sauce business logic
type SauceService struct {
	repo   SauceRepository
	images ImageRemover
	logger *slog.Logger
}

// NewSauceService creates a new SauceService
func NewSauceService(repo SauceRepository, images ImageRemover, logger *slog.Logger) *SauceService {
	return &SauceService{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

// SauceInput carries the user-editable sauce fields
type SauceInput struct {
	Name         string
	Manufacturer string
	Description  string
	MainPepper   string
	Heat         int
}

// Create stores a new sauce with zeroed vote state
func (s *SauceService) Create(ctx context.Context, userID, imageURL string, input SauceInput) (*models.Sauce, error) {
	sauce := &models.Sauce{
		UserID:        userID,
		Name:          input.Name,
		Manufacturer:  input.Manufacturer,
		Description:   input.Description,
		MainPepper:    input.MainPepper,
		ImageURL:      imageURL,
		Heat:          input.Heat,
		Likes:         0,
		Dislikes:      0,
		UsersLiked:    []string{},
		UsersDisliked: []string{},
	}

	created, err := s.repo.Create(ctx, sauce)
	if err != nil {
		s.logger.Error("failed to create sauce", slog.Any("error", err))
		return nil, err
	}

	s.logger.Info("sauce created", slog.String("sauce_id", created.ID), slog.String("user_id", userID))
	return created, nil
}

// Get returns a single sauce by ID
func (s *SauceService) Get(ctx context.Context, id string) (*models.Sauce, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all sauces
func (s *SauceService) List(ctx context.Context) ([]*models.Sauce, error) {
	return s.repo.List(ctx)
}

// Update modifies an already-loaded sauce. When newImageURL is non-empty the
// previous image file is removed from disk after the row update succeeds.
func (s *SauceService) Update(ctx context.Context, sauce *models.Sauce, newImageURL string, input SauceInput) error {
	oldImageURL := sauce.ImageURL

	sauce.Name = input.Name
	sauce.Manufacturer = input.Manufacturer
	sauce.Description = input.Description
	sauce.MainPepper = input.MainPepper
	sauce.Heat = input.Heat
	if newImageURL != "" {
		sauce.ImageURL = newImageURL
	}

	if err := s.repo.Update(ctx, sauce); err != nil {
		s.logger.Error("failed to update sauce", slog.String("sauce_id", sauce.ID), slog.Any("error", err))
		return err
	}

	if newImageURL != "" && oldImageURL != newImageURL {
		s.removeImage(oldImageURL)
	}

	s.logger.Info("sauce updated", slog.String("sauce_id", sauce.ID))
	return nil
}

// Delete removes a sauce and its image file
func (s *SauceService) Delete(ctx context.Context, sauce *models.Sauce) error {
	if err := s.repo.Delete(ctx, sauce.ID); err != nil {
		s.logger.Error("failed to delete sauce", slog.String("sauce_id", sauce.ID), slog.Any("error", err))
		return err
	}

	s.removeImage(sauce.ImageURL)

	s.logger.Info("sauce deleted", slog.String("sauce_id", sauce.ID))
	return nil
}

// Vote sets the like status of a sauce for a user
func (s *SauceService) Vote(ctx context.Context, sauceID, userID string, vote int) (*models.Sauce, error) {
	updated, err := s.repo.ApplyVote(ctx, sauceID, userID, vote)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to apply vote", slog.String("sauce_id", sauceID), slog.Any("error", err))
		}
		return nil, err
	}

	return updated, nil
}

// removeImage unlinks a stored image file; a failure is logged but never
// fails the request, matching the row as the source of truth
func (s *SauceService) removeImage(imageURL string) {
	filename := s.images.FilenameFromURL(imageURL)
	if filename == "" {
		return
	}
	if err := s.images.Remove(filename); err != nil {
		s.logger.Warn("failed to remove image file",
			slog.String("filename", filename),
			slog.Any("error", err))
	}
}
