package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // sqlite, sqlite-pure, mysql, mariadb, postgres, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string
	SeedReferenceData bool

	// Picture storage configuration
	StorageDriver   string // local, s3
	UploadRoot      string
	UploadURLPrefix string
	UploadMaxBytes  int
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string

	// Session configuration
	SessionSecret string
	SessionTTL    time.Duration
	SessionSecure bool
	BcryptCost    int

	// Logging configuration
	LogLevel string
	LogDev   bool
	LogFile  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		SeedReferenceData: getEnvAsBool("SEED_REFERENCE_DATA", true),
		StorageDriver:     getEnv("STORAGE_DRIVER", "local"),
		UploadRoot:        getEnv("UPLOAD_ROOT", "uploads"),
		UploadURLPrefix:   getEnv("UPLOAD_URL_PREFIX", "/uploads/"),
		UploadMaxBytes:    getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024),
		S3Region:          getEnv("S3_REGION", "eu-west-3"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTL:        time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 336)) * time.Hour,
		SessionSecure:     getEnvAsBool("SESSION_SECURE", false),
		BcryptCost:        getEnvAsInt("BCRYPT_COST", 12),
		LogLevel:          getEnv("LOG_LEVEL", ""),
		LogDev:            getEnvAsBool("LOG_DEV", false),
		LogFile:           getEnv("LOG_FILE", ""),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	switch cfg.StorageDriver {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER is s3")
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
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

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
