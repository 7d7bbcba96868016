package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devSessionSecret = "dev-session-secret-change-me-0123456789"

type Config struct {
	Port        string
	LogLevel    string
	DatabaseURL string

	Session SessionConfig
	Metrics MetricsConfig

	CheckoutRateLimit int
	ShutdownTimeout   time.Duration
}

type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type MetricsConfig struct {
	Enabled bool
	Token   string
}

// Load reads the environment, first merging a .env file from the working
// directory when present. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", devSessionSecret),
			TTL:          getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "storefront_sid"),
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Token:   getEnv("METRICS_TOKEN", ""),
		},
		CheckoutRateLimit: getEnvInt("CHECKOUT_RATE_LIMIT", 30),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 chars")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.CheckoutRateLimit < 0 {
		return errors.New("CHECKOUT_RATE_LIMIT must not be negative")
	}
	return nil
}

// UsesDevSecret reports whether the built-in development secret is in effect.
func (c *Config) UsesDevSecret() bool {
	return c.Session.Secret == devSessionSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
