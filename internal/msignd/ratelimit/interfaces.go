// Package ratelimit throttles device traffic and management API calls
package ratelimit

import (
	"context"
	"time"
)

// LimitKey identifies one rate limit counter
type LimitKey struct {
	Type     string // e.g. "device_poll", "pairing_code"
	Token    string // bearer token or device id when authenticated
	RemoteIP string // fallback identity for unauthenticated limits
}

// Limit defines a rate limit window
type Limit struct {
	// Rate is the number of operations allowed per Period
	Rate int

	// Period is the counting window
	Period time.Duration

	// BurstSize allows a short burst over the rate
	BurstSize int
}

// Store handles rate limit counter persistence
type Store interface {
	// Increment bumps the counter for key and returns the new count.
	// Returns ErrLimitExceeded when the count passes rate plus burst.
	Increment(ctx context.Context, key LimitKey, limit Limit) (int, error)

	// Reset clears the counter for key
	Reset(ctx context.Context, key LimitKey) error
}

// Service manages the configured limits
type Service interface {
	// Allow checks whether the operation should proceed
	Allow(ctx context.Context, key LimitKey) error

	// GetLimit returns the configured limit for a key type
	GetLimit(limitType string) Limit

	// Reset clears counters for a key
	Reset(ctx context.Context, key LimitKey) error
}

// Error represents a rate limiting failure
type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string {
	return e.Message
}

var (
	ErrLimitExceeded = Error{Code: "RATE_LIMITED", Message: "rate limit exceeded"}
	ErrStoreError    = Error{Code: "STORE_ERROR", Message: "rate limit store error"}
	ErrInvalidKey    = Error{Code: "INVALID_KEY", Message: "invalid rate limit key"}
)
