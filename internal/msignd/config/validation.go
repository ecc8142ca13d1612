package config

import (
	"fmt"
	"time"
)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if (c.Server.TLSCert != "") != (c.Server.TLSKey != "") {
		return fmt.Errorf("both TLS cert and key must be provided")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("invalid max open connections: %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 1 {
		return fmt.Errorf("invalid max idle connections: %d", c.Database.MaxIdleConns)
	}
	if c.Auth.DeviceTokenExpiry < time.Minute {
		return fmt.Errorf("device token expiry must be at least 1 minute")
	}
	if c.Auth.PairingCodeExpiry < time.Minute {
		return fmt.Errorf("pairing code expiry must be at least 1 minute")
	}
	if c.Monitor.OfflineThreshold < time.Minute {
		return fmt.Errorf("offline threshold must be at least 1 minute")
	}
	if c.Monitor.MemoryWarnPercent <= 0 || c.Monitor.MemoryWarnPercent > 100 {
		return fmt.Errorf("invalid memory warning threshold: %v", c.Monitor.MemoryWarnPercent)
	}
	if c.Monitor.StorageWarnPercent <= 0 || c.Monitor.StorageWarnPercent > 100 {
		return fmt.Errorf("invalid storage warning threshold: %v", c.Monitor.StorageWarnPercent)
	}
	if c.Monitor.CPUWarnPercent <= 0 || c.Monitor.CPUWarnPercent > 100 {
		return fmt.Errorf("invalid cpu warning threshold: %v", c.Monitor.CPUWarnPercent)
	}
	if c.Polling.DefaultIntervalSeconds < 1 {
		return fmt.Errorf("invalid default polling interval: %d", c.Polling.DefaultIntervalSeconds)
	}
	return nil
}
