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

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Fare table configuration
	Fares FaresConfig

	// Admin authentication configuration
	Admin AdminConfig

	// Kafka event configuration
	Kafka KafkaConfig

	// Upload configuration
	Upload UploadConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	Timezone    string // IANA name used for booking date/time stamps
}

// DatabaseConfig holds booking store configuration
type DatabaseConfig struct {
	Driver             string // postgres, mongo or memory
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// PaymentConfig holds payment gateway configuration
type PaymentConfig struct {
	Provider string // razorpay, stripe or mock

	RazorpayKeyID     string
	RazorpayKeySecret string // SECRET - never expose to client

	StripeSecretKey      string // SECRET - never expose to client
	StripePublishableKey string

	// RequireSignature rejects bookings that do not carry a verifiable checkout signature
	RequireSignature bool
}

// FaresConfig points at the fare table file
type FaresConfig struct {
	Path string // optional YAML file, built-in table when empty
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	JWTSecret    string // empty disables admin authentication
	TokenExpiry  time.Duration
	Username     string
	PasswordHash string // bcrypt hash
}

// KafkaConfig holds booking event publisher configuration
type KafkaConfig struct {
	Brokers []string // empty disables event publishing
	Topic   string
}

// UploadConfig holds bulk upload limits
type UploadConfig struct {
	MaxBytes int64
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3022"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Timezone:    getEnv("TIMEZONE", "Local"),
		},
		Database: DatabaseConfig{
			Driver:             strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			MongoURI:           getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			MongoDatabase:      getEnv("MONGO_DATABASE", "bus_booking"),
			MongoCollection:    getEnv("MONGO_COLLECTION", "bookings"),
		},
		Payment: PaymentConfig{
			Provider:             strings.ToLower(getEnv("PAYMENT_PROVIDER", "razorpay")),
			RazorpayKeyID:        getEnv("RAZORPAY_ID_KEY", ""),
			RazorpayKeySecret:    getEnv("RAZORPAY_SECRET_KEY", ""),
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
			RequireSignature:     getEnvAsBool("PAYMENT_REQUIRE_SIGNATURE", false),
		},
		Fares: FaresConfig{
			Path: getEnv("FARE_TABLE_PATH", ""),
		},
		Admin: AdminConfig{
			JWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
			TokenExpiry:  time.Duration(getEnvAsInt("ADMIN_TOKEN_EXPIRY", 3600)) * time.Second,
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "bus-bookings"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "mongo":
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo driver")
		}
	case "memory":
		if c.Server.Environment == "production" {
			return fmt.Errorf("memory driver is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be 'postgres', 'mongo' or 'memory')", c.Database.Driver)
	}

	switch c.Payment.Provider {
	case "razorpay":
		if c.Payment.RazorpayKeyID == "" || c.Payment.RazorpayKeySecret == "" {
			return fmt.Errorf("RAZORPAY_ID_KEY and RAZORPAY_SECRET_KEY are required for the razorpay provider")
		}
	case "stripe":
		if c.Payment.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required for the stripe provider")
		}
	case "mock":
		if c.Server.Environment == "production" {
			return fmt.Errorf("mock payment provider is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid PAYMENT_PROVIDER: %s (must be 'razorpay', 'stripe' or 'mock')", c.Payment.Provider)
	}

	if c.Admin.JWTSecret != "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when ADMIN_JWT_SECRET is set")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return nil
}

// Location resolves the configured timezone
func (s ServerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
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
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
