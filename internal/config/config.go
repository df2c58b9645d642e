package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// HTTP server
	Port            string
	ShutdownTimeout time.Duration

	// Database
	DBConnectionString string
	RunMigrations      bool

	// Auth
	JWTSecret string
	AdminKey  string
	// Resolve the MX/A record of registering email domains
	CheckEmailHost bool
	// Mark the refresh token cookie Secure
	SecureCookies bool

	// Public URL used in emailed links
	AppURL string
	// Location used to decide where a calendar day starts for stats
	Timezone string

	// SMTP, emails are only logged when SMTPHost is empty
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	LogLevel string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("Error loading .env file, continuing with system environment variables")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AdminKey:       getEnv("ADMIN_KEY", ""),
		CheckEmailHost: getEnvBool("CHECK_EMAIL_HOST", false),
		SecureCookies:  getEnvBool("COOKIE_SECURE", false),

		AppURL:   getEnv("APP_URL", "http://localhost:3000"),
		Timezone: getEnv("APP_TIMEZONE", "Local"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "Expense Tracker <no-reply@expense-tracker.local>"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBConnectionString == "" {
		errs = append(errs, "missing DB_CONNECTION_STRING")
	}

	if c.JWTSecret == "" {
		errs = append(errs, "no JWT_SECRET provided")
	}

	if c.AppURL != "" {
		if u, err := url.Parse(c.AppURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid APP_URL '%s': must be an absolute URL", c.AppURL))
		}
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid APP_TIMEZONE '%s': %v", c.Timezone, err))
	}

	if c.SMTPHost != "" {
		if _, err := strconv.Atoi(c.SMTPPort); err != nil {
			errs = append(errs, fmt.Sprintf("invalid SMTP_PORT '%s': must be a number", c.SMTPPort))
		}
		if c.EmailFrom == "" {
			errs = append(errs, "EMAIL_FROM cannot be empty when SMTP_HOST is set")
		}
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOG_LEVEL '%s'", c.LogLevel))
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Location resolves Timezone, "Local" and "" both mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// NewLogger builds the JSON logger shared by every component.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
