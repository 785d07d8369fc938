// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError   = "error.internal"
	KeyRateLimited     = "error.rate_limited"
	KeyRouteNotFound   = "error.route_not_found"
	KeyRequestTooLarge = "error.request_too_large"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserNotFound = "user.not_found"

	// Products
	KeyProductCreated        = "product.created"
	KeyProductUpdated        = "product.updated"
	KeyProductDeleted        = "product.deleted"
	KeyProductNotFound       = "product.not_found"
	KeyProductDeletionDenied = "product.deletion_denied"
	KeyProductTypeNotFound   = "product_type.not_found"
	KeyConcurrencyConflict   = "concurrency.conflict"

	// Orders
	KeyOrderNotFound      = "order.not_found"
	KeyOrderDeleted       = "order.deleted"
	KeyOrderCompleted     = "order.completed"
	KeyPaymentTypeInvalid = "payment_type.invalid"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"
)
