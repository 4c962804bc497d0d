// internal/services/services.go
package services

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/config"
	"github.com/javajoker/storefront-api/internal/i18n"
	"github.com/javajoker/storefront-api/internal/observability"
	"github.com/javajoker/storefront-api/internal/repository"
	"github.com/javajoker/storefront-api/internal/utils"
)

// Deps are the process-scoped collaborators shared by every service.
type Deps struct {
	Store   repository.Store
	Config  *config.Config
	Logger  *logrus.Entry
	Metrics *observability.Metrics
}

// Services is the full set built once in main and handed to the router.
type Services struct {
	Auth     *AuthService
	Products *ProductService
	Category *CategoryService
	Cart     *CartService
	Orders   *OrderService
	Payments *PaymentService
	Storage  *StorageService
}

func New(deps Deps, tokens *utils.TokenManager, gateway PaymentGateway) (*Services, error) {
	storage, err := NewStorageService(deps.Config)
	if err != nil {
		return nil, err
	}

	pricing := NewPricing(deps.Config.Pricing)

	return &Services{
		Auth:     NewAuthService(deps, tokens),
		Products: NewProductService(deps, storage),
		Category: NewCategoryService(deps),
		Cart:     NewCartService(deps),
		Orders:   NewOrderService(deps, pricing),
		Payments: NewPaymentService(deps, gateway),
		Storage:  storage,
	}, nil
}

// validationError converts validator output into a Validation error.
func validationError(err error) error {
	details := utils.GetValidationErrors(err)
	message := i18n.KeyValidationFailed
	if len(details) == 1 {
		message = details[0].Message
	}
	return apperr.Validation(message, details)
}

// notFoundOr maps repository.ErrNotFound to a NotFound error with key and wraps anything else as internal.
func notFoundOr(err error, key, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, key)
	}
	return apperr.Internal(op, err)
}
