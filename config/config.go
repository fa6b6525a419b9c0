package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	AppEnv    string
	JWTKey    string
	SaltRound int

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	MercadoPagoAccessToken     string
	MercadoPagoBaseURL         string
	MercadoPagoNotificationURL string
	MercadoPagoTimeoutSeconds  int

	SendgridAPIKey  string
	EmailSender     string
	EmailSenderName string

	RedisURL             string
	CertificateRateLimit int
	WebhookRateLimit     int

	OutboxSchedule    string
	OutboxMaxAttempts int
	OutboxBatchSize   int
}

// AppConfig is a global variable to access configuration
var AppConfig = defaults()

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "dev"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "school"),
		DBPort:     getEnv("DB_PORT", "5432"),

		MercadoPagoAccessToken:     getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
		MercadoPagoBaseURL:         getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),
		MercadoPagoNotificationURL: getEnv("MERCADOPAGO_NOTIFICATION_URL", ""),
		MercadoPagoTimeoutSeconds:  getEnvInt("MERCADOPAGO_TIMEOUT_SECONDS", 30),

		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "no-reply@escola.local"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "Escola"),

		RedisURL:             getEnv("REDIS_URL", ""),
		CertificateRateLimit: getEnvInt("CERTIFICATE_RATE_LIMIT", 60),
		WebhookRateLimit:     getEnvInt("WEBHOOK_RATE_LIMIT", 600),

		OutboxSchedule:    getEnv("OUTBOX_SCHEDULE", "@every 30s"),
		OutboxMaxAttempts: getEnvInt("OUTBOX_MAX_ATTEMPTS", 5),
		OutboxBatchSize:   getEnvInt("OUTBOX_BATCH_SIZE", 50),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MercadoPagoAccessToken == "" {
		log.Println("Warning: MERCADOPAGO_ACCESS_TOKEN is empty. PIX and boleto charges will fail.")
	}
}

// defaults is used before LoadConfig runs (tests, tooling).
func defaults() *Config {
	return &Config{
		Port:                 "3000",
		AppEnv:               "dev",
		JWTKey:               "defaultSecret",
		SaltRound:            10,
		DBDriver:             "sqlite",
		DBName:               "school.db",
		MercadoPagoBaseURL:   "https://api.mercadopago.com",
		CertificateRateLimit: 60,
		WebhookRateLimit:     600,
		OutboxSchedule:       "@every 30s",
		OutboxMaxAttempts:    5,
		OutboxBatchSize:      50,
	}
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
