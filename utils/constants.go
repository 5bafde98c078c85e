package utils

// Application constants
const (
	// Application name
	AppName = "GiftCard Platform"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default database host
	DefaultDBHost = "localhost"

	// Default database port
	DefaultDBPort = "5432"

	// Default database name
	DefaultDBName = "giftcard_platform"

	// Default database user
	DefaultDBUser = "postgres"

	// Default database password
	DefaultDBPassword = "postgres"

	// JWT token expiration (24 hours)
	JWTExpiration = "24h"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Maximum pagination limit
	MaxPaginationLimit = 100

	// Minimum password length
	MinPasswordLength = 8
)

// Gift card constants
const (
	// Canonical gift card code prefix
	GiftCardCodePrefix = "GC"

	// Random characters per code group
	GiftCardCodeGroupLen = 4

	// Number of random groups in a code
	GiftCardCodeGroups = 4

	// Maximum attempts to generate a unique code before giving up
	GiftCardCodeMaxAttempts = 5

	// Maximum face value and transaction amount accepted by the API
	MaxAmount = 10000

	// Maximum optimistic retries on a concurrent balance update
	BalanceUpdateMaxRetries = 3

	// Maximum gift cards accepted per batch request
	MaxBatchSize = 100
)

// Job queue constants
const (
	// Default attempts before a job is marked dead
	JobMaxAttempts = 3

	// Base delay in seconds for exponential backoff between job attempts
	JobBackoffBaseSeconds = 5

	// Default worker poll interval in seconds
	JobPollIntervalSeconds = 5

	// Age in seconds after which a running job counts as abandoned by a dead
	// worker and is put back on the queue. Must comfortably outlast the
	// slowest handler.
	JobLeaseTimeoutSeconds = 300
)

// Error messages
const (
	// Authentication errors
	ErrInvalidCredentials = "Invalid email or password"
	ErrUserBlocked        = "Your account has been disabled"
	ErrInvalidToken       = "Invalid or expired token"
	ErrUnauthorized       = "Unauthorized access"
	ErrForbidden          = "Access forbidden"

	// Validation errors
	ErrInvalidEmail      = "Invalid email format"
	ErrInvalidAmount     = "Amount must be greater than 0"
	ErrAmountTooLarge    = "Amount exceeds the maximum allowed value"
	ErrInvalidCode       = "Invalid gift card code format"
	ErrInvalidPagination = "Invalid pagination parameters"

	// Database errors
	ErrRecordNotFound = "Record not found"
	ErrDuplicateEntry = "Duplicate entry"
	ErrDBConnection   = "Database connection error"

	// Server errors
	ErrInternalServer     = "Internal server error"
	ErrServiceUnavailable = "Service unavailable"
)

// Success messages
const (
	// Authentication messages
	MsgLoginSuccess  = "Login successful"
	MsgLogoutSuccess = "Logout successful"

	// CRUD operation messages
	MsgCreateSuccess = "Created successfully"
	MsgUpdateSuccess = "Updated successfully"
	MsgDeleteSuccess = "Deleted successfully"
)
