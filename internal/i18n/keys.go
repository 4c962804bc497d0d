// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyServerError      = "server.error"
	KeyRouteNotFound    = "route.not_found"
	KeyRateLimited      = "rate_limit.exceeded"
	KeyValidationFailed = "validation.failed"
	KeyValidationField  = "validation.invalid"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthPasswordMismatch   = "auth.password_mismatch"
	KeyAuthAccountInactive    = "auth.account_inactive"
	KeyAdminAccessDenied      = "admin.access_denied"

	// Users
	KeyUserNotFound = "user.not_found"

	// Catalog
	KeyProductNotFound    = "product.not_found"
	KeyProductOutOfStock  = "product.out_of_stock"
	KeyProductDeleted     = "product.deleted"
	KeyCategoryNotFound   = "category.not_found"
	KeyCategorySlugExists = "category.slug_exists"
	KeyUploadNoFiles      = "upload.no_files"
	KeyUploadFailed       = "upload.failed"

	// Cart
	KeyCartItemNotFound = "cart.item_not_found"
	KeyCartEmpty        = "cart.empty"
	KeyCartCleared      = "cart.cleared"

	// Orders
	KeyOrderNotFound      = "order.not_found"
	KeyOrderForbidden     = "order.forbidden"
	KeyOrderInvalidStatus = "order.invalid_status"

	// Payments
	KeyPaymentNotConfigured = "payment.not_configured"
	KeyPaymentAlreadyPaid   = "payment.already_paid"
	KeyPaymentNoIntent      = "payment.no_intent"
	KeyPaymentFailed        = "payment.failed"

	// Observability
	KeyDatabaseNotConnected = "database.not_connected"
)
