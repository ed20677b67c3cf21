// Package config loads application configuration from environment
// variables, with validated defaults for every knob.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Storage driver names.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// OTP store driver names.
const (
	OTPStoreFile  = "file"
	OTPStoreRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Mail     MailConfig
	OTP      OTPConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	LogLevel    string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	EnableCORS     bool
	AllowedOrigins []string

	// LandingURL is linked from outbound mail.
	LandingURL string
}

// StorageConfig selects the persistence drivers.
type StorageConfig struct {
	// Driver selects where blobs live: "file" or "postgres".
	Driver string

	// DataDir is the blob directory for the file driver.
	DataDir string

	// OTPStore selects where OTP challenges live: "file" (the blob
	// driver) or "redis".
	OTPStore string
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MailConfig holds SMTP relay settings.
type MailConfig struct {
	// Enabled switches real dispatch on. When false every message is
	// silently dropped.
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// OTPConfig holds login-challenge settings.
type OTPConfig struct {
	// TTL is how long an issued code stays valid.
	TTL time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "lsms-backend"),
			Environment:     Environment(getEnv("APP_ENV", string(EnvDevelopment))),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		HTTP: HTTPConfig{
			Host:           getEnv("HTTP_HOST", "0.0.0.0"),
			Port:           getEnvInt("HTTP_PORT", 5500),
			ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			EnableCORS:     getEnvBool("HTTP_ENABLE_CORS", true),
			AllowedOrigins: getEnvSlice("HTTP_ALLOWED_ORIGINS", []string{"*"}),
			LandingURL:     getEnv("LANDING_URL", "http://localhost:5500/"),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", DriverFile),
			DataDir:  getEnv("STORAGE_DATA_DIR", "data"),
			OTPStore: getEnv("OTP_STORE", OTPStoreFile),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Database: getEnv("DB_NAME", "lsms"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Mail: MailConfig{
			Enabled:  getEnvBool("MAIL_ENABLED", false),
			Host:     getEnv("MAIL_HOST", ""),
			Port:     getEnvInt("MAIL_PORT", 587),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", ""),
			FromName: getEnv("MAIL_FROM_NAME", "Landmark Student Record Team"),
		},
		OTP: OTPConfig{
			TTL: getEnvDuration("OTP_TTL", 60*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Storage.Driver {
	case DriverFile, DriverPostgres:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER must be %q or %q", DriverFile, DriverPostgres))
	}

	switch c.Storage.OTPStore {
	case OTPStoreFile, OTPStoreRedis:
	default:
		errs = append(errs, fmt.Sprintf("OTP_STORE must be %q or %q", OTPStoreFile, OTPStoreRedis))
	}

	if c.Storage.Driver == DriverFile && c.Storage.DataDir == "" {
		errs = append(errs, "STORAGE_DATA_DIR is required for the file driver")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			errs = append(errs, "MAIL_HOST is required when MAIL_ENABLED=true")
		}
		if c.Mail.From == "" {
			errs = append(errs, "MAIL_FROM is required when MAIL_ENABLED=true")
		}
	}

	if c.OTP.TTL <= 0 {
		errs = append(errs, "OTP_TTL must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		result = append(result, p)
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
