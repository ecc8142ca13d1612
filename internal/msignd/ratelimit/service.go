package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type service struct {
	store   Store
	logger  *slog.Logger
	limits  map[string]Limit
	limitsM sync.RWMutex
}

// NewService creates a rate limiting service with the default limits
// registered
func NewService(store Store, logger *slog.Logger) Service {
	s := &service{
		store:  store,
		logger: logger,
		limits: make(map[string]Limit),
	}
	s.registerDefaults()
	return s
}

func (s *service) registerDefaults() {
	s.limitsM.Lock()
	defer s.limitsM.Unlock()

	// Device polling happens on a controlled interval; a device polling
	// much faster than once a second is misbehaving.
	s.limits["device_poll"] = Limit{Rate: 120, Period: time.Minute, BurstSize: 20}
	s.limits["heartbeat"] = Limit{Rate: 60, Period: time.Minute, BurstSize: 10}
	s.limits["pairing_code"] = Limit{Rate: 3, Period: 5 * time.Minute}
	s.limits["api_request"] = Limit{Rate: 300, Period: time.Minute, BurstSize: 50}
}

func (s *service) Allow(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}

	limit := s.GetLimit(key.Type)
	if limit.Rate == 0 {
		s.logger.Warn("no rate limit configured for type", "type", key.Type)
		return nil
	}

	count, err := s.store.Increment(ctx, key, limit)
	if err != nil {
		if err != ErrLimitExceeded {
			s.logger.Error("rate limit check failed",
				"error", err,
				"type", key.Type,
				"remoteIP", key.RemoteIP,
			)
		}
		return err
	}

	s.logger.Debug("rate limit check",
		"type", key.Type,
		"count", count,
		"limit", limit.Rate,
	)
	return nil
}

func (s *service) GetLimit(limitType string) Limit {
	s.limitsM.RLock()
	defer s.limitsM.RUnlock()
	return s.limits[limitType]
}

func (s *service) Reset(ctx context.Context, key LimitKey) error {
	if key.Type == "" {
		return ErrInvalidKey
	}
	return s.store.Reset(ctx, key)
}
