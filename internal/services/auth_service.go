// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/utils"
)

type AuthService struct {
	store   repository.Store
	tokens  *utils.TokenManager
	cfg     *config.Config
	logger  *logrus.Entry
	metrics *observability.Metrics
	now     func() time.Time
}

type SignupRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=50"`
	LastName        string `json:"lastName" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName    *string         `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName     *string         `json:"lastName" validate:"omitempty,min=1,max=50"`
	Phone        *string         `json:"phone" validate:"omitempty,max=30"`
	ProfileImage *string         `json:"profileImage" validate:"omitempty,url"`
	Address      *models.Address `json:"address"`
}

type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func NewAuthService(deps Deps, tokens *utils.TokenManager) *AuthService {
	return &AuthService{
		store:   deps.Store,
		tokens:  tokens,
		cfg:     deps.Config,
		logger:  deps.Logger.WithField("component", "auth"),
		metrics: deps.Metrics,
		now:     time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.AuthSignupTotal.WithLabelValues("failure").Inc()
		return nil, validationError(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		s.metrics.AuthSignupTotal.WithLabelValues("failure").Inc()
		return nil, apperr.New(apperr.KindDuplicateEmail, i18n.KeyAuthUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("failed to look up user", err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Role:      models.RoleUser,
		IsActive:  true,
	}
	if err := user.SetPassword(req.Password, s.cfg.Security.BcryptCost); err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		s.metrics.AuthSignupTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.New(apperr.KindDuplicateEmail, i18n.KeyAuthUserExists)
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.metrics.AuthSignupTotal.WithLabelValues("success").Inc()
	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.AuthLoginTotal.WithLabelValues("failure").Inc()
		return nil, validationError(err)
	}

	user, err := s.store.Users().FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.loginFailure("user_not_found", req.Email)
		}
		return nil, apperr.Internal("failed to look up user", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, s.loginFailure("invalid_password", req.Email)
	}

	if !user.IsActive {
		return nil, s.loginFailure("inactive_account", req.Email)
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.store.Users().Update(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	s.metrics.AuthLoginTotal.WithLabelValues("success").Inc()
	s.logger.WithField("user_id", user.ID).Info("User logged in")

	return s.issue(user)
}

func (s *AuthService) loginFailure(reason, email string) error {
	s.metrics.AuthLoginTotal.WithLabelValues("failure").Inc()
	s.metrics.AuthFailureTotal.WithLabelValues(reason).Inc()
	s.logger.WithFields(logrus.Fields{"reason": reason, "email": email}).Warn("Login failed")
	return apperr.New(apperr.KindInvalidCredentials, i18n.KeyAuthInvalidCredentials)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Authenticate resolves a bearer token to a live, active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.metrics.AuthFailureTotal.WithLabelValues("invalid_token").Inc()
		return nil, apperr.Wrap(apperr.KindUnauthorized, i18n.KeyAuthRequired, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		s.metrics.AuthFailureTotal.WithLabelValues("invalid_token").Inc()
		return nil, apperr.Wrap(apperr.KindUnauthorized, i18n.KeyAuthRequired, err)
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthFailureTotal.WithLabelValues("user_not_found").Inc()
			return nil, apperr.New(apperr.KindUnauthorized, i18n.KeyAuthRequired)
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	if !user.IsActive {
		s.metrics.AuthFailureTotal.WithLabelValues("inactive_account").Inc()
		return nil, apperr.New(apperr.KindUnauthorized, i18n.KeyAuthAccountInactive)
	}

	return user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyUserNotFound, "failed to load user")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyUserNotFound, "failed to load user")
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Profile updated")
	return user, nil
}
