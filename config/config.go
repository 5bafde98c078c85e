package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	// Payment gateway
	GatewayBaseURL      string
	GatewayAPIKey       string
	GatewayWebhookToken string

	// Commission charge defaults
	ChargeBillingType string
	ChargeDueDays     int

	// Background worker
	WorkerConcurrency  int
	WorkerPollInterval int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A .env file is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),

		GatewayBaseURL:      os.Getenv("GATEWAY_API_URL"),
		GatewayAPIKey:       os.Getenv("GATEWAY_API_KEY"),
		GatewayWebhookToken: os.Getenv("GATEWAY_WEBHOOK_TOKEN"),

		ChargeBillingType: envOrDefault("CHARGE_BILLING_TYPE", "BOLETO"),
		ChargeDueDays:     envOrDefaultInt("CHARGE_DUE_DAYS", 7),

		WorkerConcurrency:  envOrDefaultInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: envOrDefaultInt("WORKER_POLL_INTERVAL", 5),
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
