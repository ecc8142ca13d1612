// Package config provides configuration management for the Mesophy control server
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the server
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Polling  PollingConfig  `yaml:"polling"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	TLSCert      string        `yaml:"tlsCert"`
	TLSKey       string        `yaml:"tlsKey"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	// OperatorToken authorizes the operator surface. The real access-control
	// hierarchy (organizations/roles) lives in a separate service; this
	// server only checks for a valid bearer.
	OperatorToken     string        `yaml:"operatorToken"`
	DeviceTokenExpiry time.Duration `yaml:"deviceTokenExpiry"`
	PairingCodeExpiry time.Duration `yaml:"pairingCodeExpiry"`
}

// MonitorConfig holds health sweep thresholds
type MonitorConfig struct {
	OfflineThreshold    time.Duration `yaml:"offlineThreshold"`
	TelemetryRecency    time.Duration `yaml:"telemetryRecency"`
	AlertSuppression    time.Duration `yaml:"alertSuppression"`
	MemoryWarnPercent   float64       `yaml:"memoryWarnPercent"`
	StorageWarnPercent  float64       `yaml:"storageWarnPercent"`
	CPUWarnPercent      float64       `yaml:"cpuWarnPercent"`
	MemoryCritPercent   float64       `yaml:"memoryCritPercent"`
	StorageCritPercent  float64       `yaml:"storageCritPercent"`
	CPUCritPercent      float64       `yaml:"cpuCritPercent"`
	CriticalOfflineTime time.Duration `yaml:"criticalOfflineTime"`
}

// PollingConfig holds polling interval defaults
type PollingConfig struct {
	DefaultIntervalSeconds int `yaml:"defaultIntervalSeconds"`
}

// Load builds a configuration from defaults and environment variables
func Load() (*Config, error) {
	cfg := defaultConfig()
	cfg.overlayEnv()
	return cfg, cfg.validate()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "mesophy",
			User:            "mesophy",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			DeviceTokenExpiry: 90 * 24 * time.Hour,
			PairingCodeExpiry: 15 * time.Minute,
		},
		Monitor: MonitorConfig{
			OfflineThreshold:    30 * time.Minute,
			TelemetryRecency:    10 * time.Minute,
			AlertSuppression:    30 * time.Minute,
			MemoryWarnPercent:   85,
			StorageWarnPercent:  90,
			CPUWarnPercent:      90,
			MemoryCritPercent:   95,
			StorageCritPercent:  98,
			CPUCritPercent:      98,
			CriticalOfflineTime: 60 * time.Minute,
		},
		Polling: PollingConfig{
			DefaultIntervalSeconds: 900,
		},
	}
}

// overlayEnv overlays environment variables on top of the current config
func (c *Config) overlayEnv() {
	if host := getEnv("MSIGN_SERVER_HOST", ""); host != "" {
		c.Server.Host = host
	}
	if port := getEnvAsInt("MSIGN_SERVER_PORT", 0); port != 0 {
		c.Server.Port = port
	}
	if readTimeout := getEnvAsDuration("MSIGN_SERVER_READ_TIMEOUT", 0); readTimeout != 0 {
		c.Server.ReadTimeout = readTimeout
	}
	if writeTimeout := getEnvAsDuration("MSIGN_SERVER_WRITE_TIMEOUT", 0); writeTimeout != 0 {
		c.Server.WriteTimeout = writeTimeout
	}
	if idleTimeout := getEnvAsDuration("MSIGN_SERVER_IDLE_TIMEOUT", 0); idleTimeout != 0 {
		c.Server.IdleTimeout = idleTimeout
	}
	if tlsCert := getEnv("MSIGN_TLS_CERT", ""); tlsCert != "" {
		c.Server.TLSCert = tlsCert
	}
	if tlsKey := getEnv("MSIGN_TLS_KEY", ""); tlsKey != "" {
		c.Server.TLSKey = tlsKey
	}

	if host := getEnvMulti([]string{"MSIGN_DB_HOST", "DB_HOST", "POSTGRES_HOST"}, ""); host != "" {
		c.Database.Host = host
	}
	if port := getEnvAsIntMulti([]string{"MSIGN_DB_PORT", "DB_PORT", "POSTGRES_PORT"}, 0); port != 0 {
		c.Database.Port = port
	}
	if name := getEnvMulti([]string{"MSIGN_DB_NAME", "DB_NAME", "POSTGRES_DB"}, ""); name != "" {
		c.Database.Name = name
	}
	if user := getEnvMulti([]string{"MSIGN_DB_USER", "DB_USER", "POSTGRES_USER"}, ""); user != "" {
		c.Database.User = user
	}
	if password := getEnvMulti([]string{"MSIGN_DB_PASSWORD", "DB_PASSWORD", "POSTGRES_PASSWORD"}, ""); password != "" {
		c.Database.Password = password
	}
	if sslmode := getEnv("MSIGN_DB_SSLMODE", ""); sslmode != "" {
		c.Database.SSLMode = sslmode
	}
	if maxOpenConns := getEnvAsInt("MSIGN_DB_MAX_OPEN_CONNS", 0); maxOpenConns != 0 {
		c.Database.MaxOpenConns = maxOpenConns
	}
	if maxIdleConns := getEnvAsInt("MSIGN_DB_MAX_IDLE_CONNS", 0); maxIdleConns != 0 {
		c.Database.MaxIdleConns = maxIdleConns
	}
	if connMaxLifetime := getEnvAsDuration("MSIGN_DB_CONN_MAX_LIFETIME", 0); connMaxLifetime != 0 {
		c.Database.ConnMaxLifetime = connMaxLifetime
	}

	if addr := getEnvMulti([]string{"MSIGN_REDIS_ADDR", "REDIS_ADDR"}, ""); addr != "" {
		c.Redis.Addr = addr
	}
	if password := getEnv("MSIGN_REDIS_PASSWORD", ""); password != "" {
		c.Redis.Password = password
	}
	if db := getEnvAsInt("MSIGN_REDIS_DB", -1); db >= 0 {
		c.Redis.DB = db
	}

	if token := getEnv("MSIGN_OPERATOR_TOKEN", ""); token != "" {
		c.Auth.OperatorToken = token
	}
	if expiry := getEnvAsDuration("MSIGN_DEVICE_TOKEN_EXPIRY", 0); expiry != 0 {
		c.Auth.DeviceTokenExpiry = expiry
	}
	if expiry := getEnvAsDuration("MSIGN_PAIRING_CODE_EXPIRY", 0); expiry != 0 {
		c.Auth.PairingCodeExpiry = expiry
	}

	if threshold := getEnvAsDuration("MSIGN_OFFLINE_THRESHOLD", 0); threshold != 0 {
		c.Monitor.OfflineThreshold = threshold
	}
	if suppression := getEnvAsDuration("MSIGN_ALERT_SUPPRESSION", 0); suppression != 0 {
		c.Monitor.AlertSuppression = suppression
	}
	if interval := getEnvAsInt("MSIGN_DEFAULT_POLL_INTERVAL", 0); interval != 0 {
		c.Polling.DefaultIntervalSeconds = interval
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvMulti(keys []string, fallback string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsIntMulti(keys []string, fallback int) int {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if parsed, err := strconv.Atoi(value); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
