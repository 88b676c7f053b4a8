package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. It is built once at
// startup and passed by reference into constructors; services never read
// the environment themselves.
type Config struct {
	AppMode    string
	Port       string
	Database   DatabaseConfig
	Token      TokenConfig
	Activation ActivationConfig
	SMTP       SMTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// TokenConfig holds session token configuration
type TokenConfig struct {
	Secret     string
	TTLMinutes int
}

// ActivationConfig holds activation code configuration
type ActivationConfig struct {
	TTLMinutes int
	CodeLength int
	// URL is the frontend activation page included in activation emails
	URL string
}

// SMTPConfig holds outbound email configuration. An empty Host disables
// real delivery (codes are logged instead, dev only).
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:    appMode,
		Port:       getEnv("PORT", "3000"),
		Database:   loadDatabaseConfig(appMode),
		Token:      loadTokenConfig(appMode),
		Activation: loadActivationConfig(),
		SMTP:       loadSMTPConfig(),
	}

	log.Printf("Configuration loaded [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "booknet"),
	}
}

// loadTokenConfig loads session token config based on mode
func loadTokenConfig(mode string) TokenConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	ttl, _ := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "60"))

	return TokenConfig{
		Secret:     getEnv(prefix+"TOKEN_SECRET", "default_secret"),
		TTLMinutes: ttl,
	}
}

// loadActivationConfig loads activation code config
func loadActivationConfig() ActivationConfig {
	ttl, _ := strconv.Atoi(getEnv("ACTIVATION_TTL_MINUTES", "15"))
	length, _ := strconv.Atoi(getEnv("ACTIVATION_CODE_LENGTH", "6"))

	return ActivationConfig{
		TTLMinutes: ttl,
		CodeLength: length,
		URL:        getEnv("ACTIVATION_URL", "http://localhost:4200/activate-account"),
	}
}

// loadSMTPConfig loads outbound email config
func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@booknet.local"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://booknet.example.com"
	}
	return origins
}
