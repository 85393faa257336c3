package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these to display text.

const (
	// ==================== auth (AUTH_) ====================
	AuthUnauthorized     = "AUTH_UNAUTHORIZED"      // login required
	AuthTokenExpired     = "AUTH_TOKEN_EXPIRED"     // token expired
	AuthTokenInvalid     = "AUTH_TOKEN_INVALID"     // malformed or forged token
	AuthTokenRevoked     = "AUTH_TOKEN_REVOKED"     // session replaced or logged out
	AuthCodeInvalid      = "AUTH_CODE_INVALID"      // login code rejected by provider
	AuthIdentityExchange = "AUTH_IDENTITY_EXCHANGE" // provider unreachable

	// ==================== validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // malformed body or query
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // non-numeric path id
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // bad date, enum, etc.
	ValidationRequired      = "VALIDATION_REQUIRED"       // missing field

	// ==================== resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== user (USER_) ====================
	UserNotFound = "USER_NOT_FOUND"

	// ==================== catalog (GOODS_) ====================
	CategoryNotFound       = "CATEGORY_NOT_FOUND"
	GoodsNotFound          = "GOODS_NOT_FOUND"
	GoodsInsufficientStock = "GOODS_INSUFFICIENT_STOCK" // requested count exceeds inventory

	// ==================== cart (CART_) ====================
	CartItemNotFound   = "CART_ITEM_NOT_FOUND"
	CartEmptySelection = "CART_EMPTY_SELECTION" // nothing selected for checkout

	// ==================== address (ADDRESS_) ====================
	AddressNotFound      = "ADDRESS_NOT_FOUND"
	AddressDefaultExists = "ADDRESS_DEFAULT_EXISTS" // user already has a default address

	// ==================== order (ORDER_) ====================
	OrderNotFound       = "ORDER_NOT_FOUND"
	OrderNotCancellable = "ORDER_NOT_CANCELLABLE" // no longer awaiting payment
	OrderNotPayable     = "ORDER_NOT_PAYABLE"     // paid, cancelled or expired

	// ==================== upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
