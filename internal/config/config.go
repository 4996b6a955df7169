package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int
	Env        string
	Database   Database
	SecretKey  []byte
	// GeneratedSecret is set when SECRET_KEY was empty and SecretKey is
	// random; sessions then do not survive a restart.
	GeneratedSecret bool
	CORSOrigins     []string
	SessionTTL      time.Duration
	LogLevel        string
	LogFormat       string
}

// IsProduction reports whether the service runs behind the production frontend.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	db, err := ParseDatabaseURL(os.Getenv("DATABASE_URL"))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive")
	}

	secret := []byte(os.Getenv("SECRET_KEY"))
	generated := len(secret) == 0
	if generated {
		secret, err = randomSecret()
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		ServerPort:      port,
		Env:             getEnv("APP_ENV", "development"),
		Database:        db,
		SecretKey:       secret,
		GeneratedSecret: generated,
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		SessionTTL:      ttl,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimSuffix(part, "/"))
		}
	}
	return out
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return []byte(base64.RawURLEncoding.EncodeToString(buf)), nil
}
