// Package config loads and validates application configuration from
// environment variables. Loading collects every problem it finds and reports
// them together, so a misconfigured deployment fails fast with a full list
// instead of one error per restart.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevFallbackSecret is the JWT signing secret used when JWT_SECRET is not
// set. It exists so local development works out of the box; running with it
// in production leaves every session forgeable. main logs a warning when the
// fallback is active.
const DevFallbackSecret = "super-secret-key-development"

// SessionTokenTTL is the fixed lifetime of a session token and its cookie.
// Tokens are never refreshed; after seven days the user logs in again.
const SessionTokenTTL = 7 * 24 * time.Hour

// DatabaseConfig holds settings for the single shared PostgreSQL pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
}

// AuthConfig holds session authentication settings.
type AuthConfig struct {
	// JWTSecret signs and verifies session tokens. Process-wide and
	// read-only after startup; rotating it invalidates all live sessions.
	JWTSecret string
	// UsingFallbackSecret is true when JWTSecret is the development
	// fallback rather than an operator-provided value.
	UsingFallbackSecret bool
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
	// CookieSecure marks the session cookie Secure (production only).
	CookieSecure bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AnalysisConfig holds settings for the external AI detection service.
type AnalysisConfig struct {
	// ServiceURL is the base URL of the detection service.
	ServiceURL string
	// Timeout bounds a single detection call, independently of any
	// database work.
	Timeout time.Duration
	// UploadDir is where captured images are stored before analysis.
	UploadDir string
}

// AppConfig is the top-level configuration for the application.
type AppConfig struct {
	DB       *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
	Analysis *AnalysisConfig
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got %q: %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the pool size within sane bounds.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 2 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 2, clamping to 2", varName, size))
		return 2
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig reads the environment and returns a validated AppConfig.
// All problems found are aggregated into a single error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	// Database
	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), "DB_POOL_SIZE", &errs)

	dbConfig := &DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxConns: poolSize,
	}

	// Auth
	env := getOptionalEnv("APP_ENV", "development")
	jwtSecret, haveSecret := os.LookupEnv("JWT_SECRET")
	if !haveSecret || jwtSecret == "" {
		jwtSecret = DevFallbackSecret
	}
	authConfig := &AuthConfig{
		JWTSecret:           jwtSecret,
		UsingFallbackSecret: jwtSecret == DevFallbackSecret,
		TokenTTL:            SessionTokenTTL,
		CookieSecure:        env == "production",
	}

	// Server
	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	// Analysis service
	analysisConfig := &AnalysisConfig{
		ServiceURL: getOptionalEnv("AI_SERVICE_URL", "http://localhost:8000"),
		Timeout:    getOptionalEnvDuration("AI_SERVICE_TIMEOUT", 30*time.Second, &errs),
		UploadDir:  getOptionalEnv("UPLOAD_DIR", "./uploads"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:       dbConfig,
		Auth:     authConfig,
		Server:   serverConfig,
		Analysis: analysisConfig,
	}, nil
}
