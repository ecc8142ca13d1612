package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore is an in-memory Store enforcing rate plus burst.
type countingStore struct {
	mu     sync.Mutex
	counts map[LimitKey]int
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{counts: make(map[LimitKey]int)}
}

func (s *countingStore) Increment(ctx context.Context, key LimitKey, limit Limit) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	count := s.counts[key]
	if count > limit.Rate+limit.BurstSize {
		return count, ErrLimitExceeded
	}
	return count, nil
}

func (s *countingStore) Reset(ctx context.Context, key LimitKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
	return nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAllow(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	svc := NewService(store, testLogger)
	key := LimitKey{Type: "pairing_code", RemoteIP: "10.0.0.1"}

	// pairing_code allows 3 per window with no burst.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Allow(ctx, key))
	}
	err := svc.Allow(ctx, key)
	assert.Equal(t, ErrLimitExceeded, err)

	// A different caller has its own counter.
	assert.NoError(t, svc.Allow(ctx, LimitKey{Type: "pairing_code", RemoteIP: "10.0.0.2"}))
}

func TestAllow_BurstOverRate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newCountingStore(), testLogger)
	key := LimitKey{Type: "heartbeat", Token: "device-token"}

	// heartbeat allows 60 per minute plus a burst of 10.
	for i := 0; i < 70; i++ {
		require.NoError(t, svc.Allow(ctx, key), "request %d", i)
	}
	assert.Equal(t, ErrLimitExceeded, svc.Allow(ctx, key))
}

func TestAllow_MissingType(t *testing.T) {
	svc := NewService(newCountingStore(), testLogger)
	assert.Equal(t, ErrInvalidKey, svc.Allow(context.Background(), LimitKey{}))
}

func TestAllow_UnknownTypePasses(t *testing.T) {
	svc := NewService(newCountingStore(), testLogger)
	assert.NoError(t, svc.Allow(context.Background(), LimitKey{Type: "unconfigured"}))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newCountingStore(), testLogger)
	key := LimitKey{Type: "pairing_code", RemoteIP: "10.0.0.1"}

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Allow(ctx, key))
	}
	require.Equal(t, ErrLimitExceeded, svc.Allow(ctx, key))

	require.NoError(t, svc.Reset(ctx, key))
	assert.NoError(t, svc.Allow(ctx, key))
}

func TestGetLimitDefaults(t *testing.T) {
	svc := NewService(newCountingStore(), testLogger)

	limit := svc.GetLimit("device_poll")
	assert.Equal(t, 120, limit.Rate)
	assert.Equal(t, time.Minute, limit.Period)
	assert.Equal(t, 20, limit.BurstSize)

	assert.Zero(t, svc.GetLimit("nonexistent").Rate)
}

func TestMiddleware_Throttles(t *testing.T) {
	svc := NewService(newCountingStore(), testLogger)

	handler := Middleware(svc, testLogger, Options{
		LimitType: "pairing_code",
		GetToken:  func(r *http.Request) string { return "" },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pairing/code", nil))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pairing/code", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestMiddleware_FailsOpenOnStoreError(t *testing.T) {
	store := newCountingStore()
	store.err = ErrStoreError
	svc := NewService(store, testLogger)

	handler := Middleware(svc, testLogger, Options{
		LimitType: "api_request",
		GetToken:  func(r *http.Request) string { return "" },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "throttling must never cause an outage")
}
