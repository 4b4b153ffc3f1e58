package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port          string
	AllowedOrigin string

	// Store
	RedisURL string

	// Auth
	JWTSecret      string
	TokenTTL       time.Duration
	AuthCookieName string
	AdminEmails    []string

	// Scheduler (QStash-compatible)
	QStashURL            string
	QStashToken          string
	QStashCurrentSignKey string
	QStashNextSignKey    string
	CallbackBaseURL      string

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Application settings
	Environment string
	LogLevel    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (not required in production)
	godotenv.Load()

	config := &Config{
		Port:                 getEnv("PORT", "8080"),
		AllowedOrigin:        getEnv("ALLOWED_ORIGIN", "*"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenTTL:             time.Duration(getEnvAsInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AuthCookieName:       getEnv("AUTH_COOKIE_NAME", "inkbase_session"),
		AdminEmails:          getEnvAsList("ADMIN_EMAILS"),
		QStashURL:            getEnv("QSTASH_URL", "https://qstash.upstash.io"),
		QStashToken:          getEnv("QSTASH_TOKEN", ""),
		QStashCurrentSignKey: getEnv("QSTASH_CURRENT_SIGNING_KEY", ""),
		QStashNextSignKey:    getEnv("QSTASH_NEXT_SIGNING_KEY", ""),
		CallbackBaseURL:      getEnv("CALLBACK_BASE_URL", "http://localhost:8080"),
		RateLimitRPS:         getEnvAsInt("RATE_LIMIT_REQUESTS_PER_SECOND", 10),
		RateLimitBurst:       getEnvAsInt("RATE_LIMIT_BURST", 20),
		Environment:          getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	// Token lifetime is capped at one hour as a security property
	if c.TokenTTL <= 0 || c.TokenTTL > time.Hour {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be between 1 and 60")
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	return nil
}

// IsAdminEmail reports whether the email is configured as an admin account
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}

	return values
}
