package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_ssl_mode"`
	DBPath     string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security configuration
	JWTSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`

	// Attachment storage
	UploadDir string `json:"upload_dir"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Environment: %s, DBDriver: %s, DBHost: %s, DBPort: %s, DBUser: %s, DBPassword: [REDACTED], DBName: %s, DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], TokenTTLHours: %d, UploadDir: %s}",
		c.Port, c.Host, c.Environment, c.DBDriver, c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBPath, c.LogLevel, c.TokenTTLHours, c.UploadDir)
}

// LoadConfig reads the configuration from environment variables and returns a Config struct.
// JWT_SECRET is required outside development so the signing key is never a
// baked-in constant. Returns an error if any required variable is missing or invalid.
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}
	if port <= 0 {
		return nil, errors.New("APP_PORT must be a positive integer")
	}

	environment := GetEnvWithDefault("APP_ENV", "development")
	jwtSecret := GetEnvWithDefault("JWT_SECRET", "")
	if jwtSecret == "" {
		if environment != "development" {
			return nil, errors.New("JWT_SECRET environment variable is required")
		}
		jwtSecret = "dev-only-secret"
	}

	ttl := GetEnvAsType("TOKEN_TTL_HOURS", 24)
	if ttl <= 0 {
		return nil, errors.New("TOKEN_TTL_HOURS must be a positive integer")
	}

	config := &Config{
		Port:          port,
		Host:          GetEnvWithDefault("APP_HOST", "localhost"),
		Environment:   environment,
		DBDriver:      GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBHost:        GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:        GetEnvWithDefault("DB_PORT", "5432"),
		DBUser:        GetEnvWithDefault("DB_USER", "user"),
		DBPassword:    GetEnvWithDefault("DB_PASSWORD", "password"),
		DBName:        GetEnvWithDefault("DB_NAME", "tasks"),
		DBSSLMode:     GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:        GetEnvWithDefault("DB_PATH", "tasks.sqlite"),
		LogLevel:      GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:     jwtSecret,
		TokenTTLHours: ttl,
		UploadDir:     GetEnvWithDefault("UPLOAD_DIR", "uploads"),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Warnf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
