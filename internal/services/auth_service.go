package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/auth"
	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
	pkgauth "github.com/roy-raphael/DW-P6-Piiquante/pkg/auth"
	pkglogger "github.com/roy-raphael/DW-P6-Piiquante/pkg/logger"
)

// UserRepository defines the persistence operations the auth flow needs
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// LoginThrottle is the admission-control collaborator guarding the login
// endpoint
type LoginThrottle interface {
	Admit(email string) error
	Record(email string, success bool) error
}

// AuthService handles signup and login business logic
type AuthService struct {
	repo        UserRepository
	tokens      *auth.TokenService
	throttle    LoginThrottle
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tokens *auth.TokenService, throttle LoginThrottle, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tokens:      tokens,
		throttle:    throttle,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// LoginResponse is the login success payload
type LoginResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// Signup creates a new account with a hashed password
func (s *AuthService) Signup(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
	}

	if _, err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.logger.Info("signup failed: email already registered")
			return models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "signup",
		UserID:    user.ID,
		Success:   true,
	})

	return nil
}

// Login verifies credentials under throttle control and returns a signed
// token on success. Unknown-user and wrong-password failures are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// admission check first: a blocked key never reaches the credential check
	if err := s.throttle.Admit(email); err != nil {
		if rle, ok := models.AsRateLimited(err); ok {
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				Email:         email,
				FailureReason: "rate_limited",
				Success:       false,
			})
			return nil, rle
		}
		s.logger.Error("throttle admission check failed", slog.Any("error", err))
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.failLogin(email, "unknown_user")
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.failLogin(email, "wrong_password")
	}

	if err := s.throttle.Record(email, true); err != nil {
		s.logger.Error("failed to reset failure streak", slog.Any("error", err))
		return nil, err
	}

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return &LoginResponse{UserID: user.ID, Token: token}, nil
}

// failLogin books a failed attempt and maps the outcome to the uniform
// invalid-credentials error. The reason only reaches the audit log, never
// the response.
func (s *AuthService) failLogin(email, reason string) error {
	if err := s.throttle.Record(email, false); err != nil {
		s.logger.Error("failed to record login failure", slog.Any("error", err))
		return err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		Email:         email,
		FailureReason: reason,
		Success:       false,
	})

	return models.ErrInvalidCredentials
}
