// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"mime/multipart"
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

type ProductService struct {
	store   repository.Store
	storage *StorageService
	logger  *logrus.Entry
	metrics *observability.Metrics
}

type ProductFilter struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Rating   *float64
}

type CreateProductRequest struct {
	Name          string                `json:"name" validate:"required,max=200"`
	Description   string                `json:"description" validate:"required"`
	Price         float64               `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64              `json:"originalPrice" validate:"omitempty,gt=0"`
	CategoryID    string                `json:"categoryId" validate:"required,uuid"`
	Images        []models.ProductImage `json:"images" validate:"omitempty,dive"`
	Stock         int                   `json:"stock" validate:"gte=0"`
	Rating        float64               `json:"rating" validate:"gte=0,lte=5"`
	SKU           string                `json:"sku" validate:"omitempty,max=64"`
	Tags          []string              `json:"tags"`
}

type UpdateProductRequest struct {
	Name          *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string                `json:"description"`
	Price         *float64               `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice *float64               `json:"originalPrice" validate:"omitempty,gt=0"`
	CategoryID    *string                `json:"categoryId" validate:"omitempty,uuid"`
	Images        *[]models.ProductImage `json:"images"`
	Stock         *int                   `json:"stock" validate:"omitempty,gte=0"`
	Rating        *float64               `json:"rating" validate:"omitempty,gte=0,lte=5"`
	SKU           *string                `json:"sku" validate:"omitempty,max=64"`
	Tags          *[]string              `json:"tags"`
	IsActive      *bool                  `json:"isActive"`
}

func NewProductService(deps Deps, storage *StorageService) *ProductService {
	return &ProductService{
		store:   deps.Store,
		storage: storage,
		logger:  deps.Logger.WithField("component", "catalog"),
		metrics: deps.Metrics,
	}
}

// ListProducts returns one page of active products matching every filter, newest first.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter, page utils.PaginationParams) ([]models.Product, int64, error) {
	query := repository.ProductQuery{
		Search:    filter.Search,
		MinPrice:  filter.MinPrice,
		MaxPrice:  filter.MaxPrice,
		MinRating: filter.Rating,
		Offset:    page.Offset(),
		Limit:     page.Limit,
	}

	if category := strings.TrimSpace(filter.Category); category != "" {
		categoryID, err := s.resolveCategory(ctx, category)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return []models.Product{}, 0, nil
			}
			return nil, 0, err
		}
		query.CategoryID = &categoryID
	}

	if strings.TrimSpace(filter.Search) != "" {
		s.metrics.SearchQueryTotal.Inc()
	}

	products, total, err := s.store.Products().List(ctx, query)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, total, nil
}

// resolveCategory accepts either a category id or a slug.
func (s *ProductService) resolveCategory(ctx context.Context, category string) (uuid.UUID, error) {
	if id, err := uuid.Parse(category); err == nil {
		return id, nil
	}
	found, err := s.store.Categories().FindBySlug(ctx, strings.ToLower(category))
	if err != nil {
		return uuid.Nil, notFoundOr(err, i18n.KeyCategoryNotFound, "failed to load category")
	}
	return found.ID, nil
}

// GetProduct records a view and returns the product with the incremented counter.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.Products().IncrementViewCount(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyProductNotFound, "failed to load product")
	}

	category := "uncategorized"
	if product.Category != nil {
		category = product.Category.Slug
	}
	s.metrics.ProductViewTotal.WithLabelValues(category).Inc()

	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	categoryID := uuid.MustParse(req.CategoryID)
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		CategoryID:    categoryID,
		Images:        models.ProductImages(req.Images),
		Stock:         req.Stock,
		Rating:        req.Rating,
		SKU:           req.SKU,
		Tags:          req.Tags,
		IsActive:      true,
	}

	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, apperr.Internal("failed to create product", err)
	}
	product.Category = category

	s.metrics.AdminActionTotal.WithLabelValues("create", "product").Inc()
	s.logger.WithFields(logrus.Fields{"product_id": product.ID, "name": product.Name}).Info("Product created")

	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyProductNotFound, "failed to load product")
	}

	if req.CategoryID != nil {
		categoryID := uuid.MustParse(*req.CategoryID)
		category, err := s.requireCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
		product.Category = category
	}
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = req.OriginalPrice
	}
	if req.Images != nil {
		product.Images = models.ProductImages(*req.Images)
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Tags != nil {
		product.Tags = *req.Tags
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.store.Products().Update(ctx, product); err != nil {
		return nil, notFoundOr(err, i18n.KeyProductNotFound, "failed to update product")
	}

	s.metrics.AdminActionTotal.WithLabelValues("update", "product").Inc()
	s.logger.WithField("product_id", product.ID).Info("Product updated")

	return product, nil
}

// DeleteProduct hides the product from the catalog; existing orders keep referencing it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, i18n.KeyProductNotFound, "failed to load product")
	}

	product.IsActive = false
	if err := s.store.Products().Update(ctx, product); err != nil {
		return apperr.Internal("failed to delete product", err)
	}

	s.metrics.AdminActionTotal.WithLabelValues("delete", "product").Inc()
	s.logger.WithField("product_id", product.ID).Info("Product deleted")
	return nil
}

// UploadProductImages stores each file and appends its URL to the product images.
func (s *ProductService) UploadProductImages(ctx context.Context, id uuid.UUID, files []*multipart.FileHeader) (*models.Product, error) {
	if len(files) == 0 {
		return nil, apperr.New(apperr.KindValidation, i18n.KeyUploadNoFiles)
	}

	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, i18n.KeyProductNotFound, "failed to load product")
	}

	options := s.storage.GetDefaultUploadOptions("products")
	for _, header := range files {
		result, err := s.storage.UploadFileHeader(ctx, header, options)
		if err != nil {
			return nil, err
		}
		product.Images = append(product.Images, models.ProductImage{URL: result.URL, Alt: product.Name})
	}

	if err := s.store.Products().Update(ctx, product); err != nil {
		return nil, apperr.Internal("failed to save product images", err)
	}

	s.metrics.AdminActionTotal.WithLabelValues("upload", "product").Inc()
	s.logger.WithFields(logrus.Fields{"product_id": product.ID, "count": len(files)}).Info("Product images uploaded")

	return product, nil
}

func (s *ProductService) requireCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.store.Categories().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindValidation, i18n.KeyCategoryNotFound)
		}
		return nil, apperr.Internal("failed to load category", err)
	}
	return category, nil
}
