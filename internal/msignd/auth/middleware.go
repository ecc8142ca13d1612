package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

type screenIDKey struct{}

// ScreenIDFromContext returns the authenticated screen id placed in the
// request context by DeviceAuth
func ScreenIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(screenIDKey{}).(uuid.UUID)
	return id, ok
}

// DeviceAuth validates the bearer token on device-facing routes and stores
// the resolved screen id in the request context. An unrecognized token gets a
// "not_registered" body so the device client knows to re-pair instead of
// retrying with the same credential.
func DeviceAuth(svc Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, "missing_token", "authorization required")
				return
			}

			screenID, err := svc.ValidateToken(r.Context(), token)
			if err != nil {
				if errors.IsNotRegistered(err) {
					writeAuthError(w, "not_registered", "device is not registered")
					return
				}
				writeAuthError(w, "invalid_token", "token rejected")
				return
			}

			ctx := context.WithValue(r.Context(), screenIDKey{}, screenID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorAuth gates management routes behind a shared operator token.
// An empty configured token disables the check (local development).
func OperatorAuth(operatorToken string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if operatorToken != "" && bearerToken(r) != operatorToken {
				writeAuthError(w, "invalid_token", "operator authorization required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
