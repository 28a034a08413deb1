package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port        string
		GinMode     string
		Environment string
		LogLevel    string
	}

	JWT struct {
		Secret      string
		ExpiryHours int
	}

	Blob struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}

	FaceMatch struct {
		Enabled        bool
		URL            string
		TimeoutSeconds int
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "electoral")
	config.DB.Password = getEnv("DB_PASSWORD", "electoral_password")
	config.DB.Name = getEnv("DB_NAME", "electoral_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.Environment = getEnv("ENVIRONMENT", "development")
	config.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	config.JWT.Secret = getEnv("JWT_SECRET", "change-me-in-production")
	config.JWT.ExpiryHours = getEnvAsInt("JWT_EXPIRY_HOURS", 24)

	config.Blob.Endpoint = getEnv("BLOB_ENDPOINT", "localhost:9000")
	config.Blob.AccessKey = getEnv("BLOB_ACCESS_KEY", "minioadmin")
	config.Blob.SecretKey = getEnv("BLOB_SECRET_KEY", "minioadmin")
	config.Blob.Bucket = getEnv("BLOB_BUCKET", "electoral-photos")
	config.Blob.UseSSL = getEnvAsBool("BLOB_USE_SSL", false)

	config.FaceMatch.Enabled = getEnvAsBool("FACE_MATCH_ENABLED", false)
	config.FaceMatch.URL = getEnv("FACE_MATCH_URL", "http://localhost:3001/verify")
	config.FaceMatch.TimeoutSeconds = getEnvAsInt("FACE_MATCH_TIMEOUT_SECONDS", 10)

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
