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

// Config holds the configuration values for the portal.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	CORSOrigins  string

	ClinicTimezone string

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string
	MailFrom  string
	ResetURL  string

	CloudinaryURL string

	MaintenanceSchedule string
	ReminderSchedule    string

	LogFile  string
	LogLevel string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found. Using environment variables directly.")
	}

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SessionTTL:          getEnvDuration("SESSION_TTL", 2*time.Hour),
		CookieSecure:        getEnvBool("COOKIE_SECURE", false),
		CORSOrigins:         getEnv("CORS_ORIGINS", "*"),
		ClinicTimezone:      getEnv("CLINIC_TIMEZONE", "UTC"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		EmailUser:           os.Getenv("EMAIL_USER"),
		EmailPass:           os.Getenv("EMAIL_PASS"),
		MailFrom:            getEnv("MAIL_FROM", "no-reply@wellness.local"),
		ResetURL:            getEnv("RESET_URL", "http://localhost:3000/reset-password?token="),
		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		MaintenanceSchedule: os.Getenv("MAINTENANCE_SCHEDULE"),
		ReminderSchedule:    os.Getenv("REMINDER_SCHEDULE"),
		LogFile:             os.Getenv("LOG_FILE"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	if cfg.ReminderSchedule == "off" {
		cfg.ReminderSchedule = ""
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET is not set")
		}
		cfg.JWTSecret = "development_secret_key"
		log.Println("Warning: JWT_SECRET not set, using development key")
	}
	if _, err := time.LoadLocation(cfg.ClinicTimezone); err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", cfg.ClinicTimezone, err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the portal runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Location returns the clinic's time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
