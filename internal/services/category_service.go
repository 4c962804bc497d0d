// internal/services/category_service.go
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/utils"
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

type CategoryService struct {
	store   repository.Store
	logger  *logrus.Entry
	metrics *observability.Metrics
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=120"`
	IsActive    *bool   `json:"isActive"`
}

func NewCategoryService(deps Deps) *CategoryService {
	return &CategoryService{
		store:   deps.Store,
		logger:  deps.Logger.WithField("component", "catalog"),
		metrics: deps.Metrics,
	}
}

func Slugify(name string) string {
	return strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.Categories().ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list categories", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Slug:        slug,
		IsActive:    true,
	}

	if err := s.store.Categories().Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.New(apperr.KindValidation, i18n.KeyCategorySlugExists)
		}
		return nil, apperr.Internal("failed to create category", err)
	}

	s.metrics.AdminActionTotal.WithLabelValues("create", "category").Inc()
	s.logger.WithFields(logrus.Fields{"category_id": category.ID, "slug": category.Slug}).Info("Category created")
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	category, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyCategoryNotFound, "failed to load category")
	}

	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Slug != nil {
		category.Slug = Slugify(*req.Slug)
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.store.Categories().Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.New(apperr.KindValidation, i18n.KeyCategorySlugExists)
		}
		return nil, apperr.Internal("failed to update category", err)
	}

	s.metrics.AdminActionTotal.WithLabelValues("update", "category").Inc()
	return category, nil
}
