package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultJWTKey   = "defaultSecret"
	defaultPassword = "CBI"
)

// Config holds application configuration
type Config struct {
	Port      string
	PublicDir string

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	Timezone string

	JWTKey     string
	SaltRound  int
	SessionTTL time.Duration

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	CorsOrigins string

	LogLevel    string
	LogEncoding string

	SummaryCron string
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8000"),
		PublicDir: getEnv("PUBLIC_DIR", "./public"),

		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		Timezone: getEnv("TIMEZONE", "America/New_York"),

		JWTKey:     getEnv("JWT_SECRET_KEY", defaultJWTKey),
		SaltRound:  getEnvInt("SALT_ROUND", 10),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		AdminUsername:     getEnv("ADMIN_USERNAME", "BLH"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", defaultPassword),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		CorsOrigins: getEnv("CORS_ORIGINS", "*"),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "console"),

		SummaryCron: getEnv("SUMMARY_CRON", ""),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == "postgres" {
		cfg.DatabaseURL = postgresDSNFromParts()
	}

	// Validate critical configuration
	if cfg.JWTKey == defaultJWTKey {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.AdminPasswordHash == "" && cfg.AdminPassword == defaultPassword {
		log.Println("Warning: Using default ADMIN_PASSWORD. Update it in your environment.")
	}

	return cfg
}

// postgresDSNFromParts builds a DSN from the discrete DB_* variables
func postgresDSNFromParts() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "cbi"),
		getEnv("DB_PORT", "5432"),
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
