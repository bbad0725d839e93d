package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the key/value connection string understood by the pgx driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// DatabaseURL returns the postgres:// URL used by the migration runner.
func (c DatabaseConfig) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// KafkaConfig holds Kafka producer settings. An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers []string
}

// RedisConfig holds settings for the optional Redis cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimitConfig holds per-user request throttling settings. Zero disables throttling.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load returns a viper instance reading, in increasing precedence, defaults,
// an optional config.yaml, an optional .env file and environment variables
// prefixed with the given prefix (e.g. BOOKING_DB_HOST).
func Load(prefix string) (*viper.Viper, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("service.port", "8080")
	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("kafka.brokers", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	v.SetDefault("ratelimit.per_minute", 0)
}

// GetAppEnv returns the application environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("app.env")
}

// GetServicePort returns the HTTP listen address (":port").
func GetServicePort(v *viper.Viper) string {
	port := v.GetString("service.port")
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// LoadDatabaseConfig reads the database section. dbNameDefault is used when db.name is unset.
func LoadDatabaseConfig(v *viper.Viper, dbNameDefault string) DatabaseConfig {
	v.SetDefault("db.name", dbNameDefault)
	return DatabaseConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetString("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		DBName:   v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
	}
}

// LoadKafkaConfig reads a comma-separated broker list.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("kafka.brokers"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{Brokers: brokers}
}

// LoadRedisConfig reads the redis section.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TTL:      v.GetDuration("redis.ttl"),
	}
}

// LoadRateLimitConfig reads the ratelimit section.
func LoadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: v.GetInt("ratelimit.per_minute")}
}
