package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port          string
	Environment   string
	DatabaseURL   string
	SessionSecret string
	EncryptionKey string
	SessionTTL    time.Duration

	ProcessingBackendURL string
	ProcessingTimeout    time.Duration
	ProcessingRetries    int

	DateDisplayLayout     string
	AllowedOrigins        []string
	EnforceRequiredFields bool

	LogLevel string
	LogFile  string
}

const (
	defaultSessionSecret = "formwizard-session-secret-change-me"
	defaultEncryptionKey = "FormWizard2025SubmissionKey12345"
)

// Load reads .env, when present, and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", "formwizard.db"),
		SessionSecret: getEnv("SESSION_SECRET", defaultSessionSecret),
		EncryptionKey: getEnv("ENCRYPTION_KEY", defaultEncryptionKey),
		SessionTTL:    getDuration("SESSION_TTL", 2*time.Hour),

		ProcessingBackendURL: getEnv("PROCESSING_BACKEND_URL", "http://localhost:5000"),
		ProcessingTimeout:    getDuration("PROCESSING_TIMEOUT", 2*time.Minute),
		ProcessingRetries:    getInt("PROCESSING_RETRIES", 2),

		DateDisplayLayout:     getEnv("DATE_DISPLAY_LAYOUT", "1/2/2006"),
		AllowedOrigins:        getList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		EnforceRequiredFields: getBool("ENFORCE_REQUIRED_FIELDS", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate rejects settings the service cannot start with and warns about
// development defaults left in place.
func Validate(cfg *Config, log logrus.FieldLogger) error {
	if len(cfg.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 characters, got %d", len(cfg.EncryptionKey))
	}
	if cfg.ProcessingBackendURL == "" {
		return fmt.Errorf("PROCESSING_BACKEND_URL is required")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.ProcessingRetries < 0 {
		return fmt.Errorf("PROCESSING_RETRIES must not be negative, got %d", cfg.ProcessingRetries)
	}
	if len(cfg.SessionSecret) < 32 {
		log.Warn("SESSION_SECRET should be at least 32 characters")
	}
	if cfg.Environment == "production" && (cfg.SessionSecret == defaultSessionSecret || cfg.EncryptionKey == defaultEncryptionKey) {
		log.Warn("Change SESSION_SECRET and ENCRYPTION_KEY in production environment")
	}
	return nil
}
