package config

import (
	"fmt"

	"github.com/shareit-platform/service-booking/pkg/config"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	StorageDriver string
	MigrationsDir string
	DBConfig      config.DatabaseConfig
	KafkaConfig   config.KafkaConfig
	RedisConfig   config.RedisConfig
	RateLimit     config.RateLimitConfig
}

// Load reads configuration from BOOKING_* environment variables, .env and config.yaml.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("migrations.dir", "migrations")

	cfg := &ServiceConfig{
		Port:          config.GetServicePort(v),
		AppEnv:        config.GetAppEnv(v),
		StorageDriver: v.GetString("storage.driver"),
		MigrationsDir: v.GetString("migrations.dir"),
		DBConfig:      config.LoadDatabaseConfig(v, "shareit"),
		KafkaConfig:   config.LoadKafkaConfig(v),
		RedisConfig:   config.LoadRedisConfig(v),
		RateLimit:     config.LoadRateLimitConfig(v),
	}

	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}
