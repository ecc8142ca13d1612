// Package redis implements the telemetry store using Redis
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mesophy/mesophy-signage/internal/msignd/device"
)

// DefaultRetention is how long a telemetry sample stays readable. Samples
// older than this are useless for alerting and are left to expire.
const DefaultRetention = 10 * time.Minute

// TelemetryStore keeps the latest telemetry sample per device in Redis with
// a short TTL.
type TelemetryStore struct {
	client    *redis.Client
	retention time.Duration
	keyPrefix string
}

// NewTelemetryStore creates a new Redis-backed telemetry store
func NewTelemetryStore(client *redis.Client) *TelemetryStore {
	return &TelemetryStore{
		client:    client,
		retention: DefaultRetention,
		keyPrefix: "telemetry",
	}
}

func (s *TelemetryStore) key(deviceID string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, deviceID)
}

// SaveSample stores the latest sample for a device, replacing any prior one
func (s *TelemetryStore) SaveSample(ctx context.Context, sample *device.Telemetry) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry sample: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sample.DeviceID), data, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to store telemetry sample: %w", err)
	}
	return nil
}

// LatestSample returns the most recent sample for a device, or nil when none
// is available within the retention window
func (s *TelemetryStore) LatestSample(ctx context.Context, deviceID string) (*device.Telemetry, error) {
	data, err := s.client.Get(ctx, s.key(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load telemetry sample: %w", err)
	}

	var sample device.Telemetry
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry sample: %w", err)
	}
	return &sample, nil
}
