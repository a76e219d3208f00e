package constants

import "time"

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "bearer"
	IdempotencyHeaderKey    = "Idempotency-Key"

	CallerKey ContextKey = "caller"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-ID"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Prod  ENV = "production"
)

const (
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultCheckoutRetries   = 3
	DefaultCatalogCacheTTL   = 5 * time.Minute
	DefaultOutboxInterval    = time.Second
	DefaultOutboxBatchSize   = 100
	DefaultCatalogInitialQty = 20
)
