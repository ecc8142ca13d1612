package ratelimit

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Options configures the rate limiting middleware for one route group
type Options struct {
	// LimitType selects the registered limit to enforce
	LimitType string

	// GetToken extracts a caller identity from the request, when available
	GetToken func(r *http.Request) string
}

// Middleware enforces the configured limit, answering 429 with a
// Retry-After hint when the caller is over it. Store failures let the
// request through; throttling is never worth an outage.
func Middleware(service Service, logger *slog.Logger, options Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := LimitKey{
				Type:     options.LimitType,
				RemoteIP: realIP(r),
			}
			if options.GetToken != nil {
				key.Token = options.GetToken(r)
			}

			err := service.Allow(r.Context(), key)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var limitErr Error
			if errors.As(err, &limitErr) && limitErr.Code == ErrLimitExceeded.Code {
				limit := service.GetLimit(options.LimitType)
				retryAfter := int(limit.Period.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			logger.Error("rate limit check error, allowing request",
				"error", err,
				"type", options.LimitType,
				"path", r.URL.Path,
			)
			next.ServeHTTP(w, r)
		})
	}
}

// realIP honors X-Real-IP and X-Forwarded-For the way upstream proxies set
// them, falling back to the socket address
func realIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return host
}
