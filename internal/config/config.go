package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Reporting ReportingConfig
	Inventory InventoryConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

// RedisConfig holds the distributed lock settings. An empty Addr disables Redis
// and entity locks fall back to the in-process locker.
type RedisConfig struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// InventoryConfig tunes expiration alerts.
type InventoryConfig struct {
	AlertWindowDays int
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API. The block is
// optional; notifications and manager commands are disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	ManagerID     string
}

// Enabled reports whether WhatsApp credentials were supplied.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != ""
}

// SheetsConfig contains configuration required to export to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether a spreadsheet export target was configured.
func (s SheetsConfig) Enabled() bool {
	return s.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	mongoTimeout, err := getenvDuration("MONGODB_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	lockTTL, err := getenvDuration("REDIS_LOCK_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	alertWindow, err := getenvInt("EXPIRATION_ALERT_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		MongoDB: MongoDBConfig{
			URI:     getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName:  getenvWithDefault("MONGODB_DB_NAME", "cafepos"),
			Timeout: mongoTimeout,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
			LockTTL:  lockTTL,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "5 0 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Inventory: InventoryConfig{
			AlertWindowDays: alertWindow,
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerID:     os.Getenv("WHATSAPP_MANAGER_ID"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Reporting.Timezone, err)
	}

	if c.Inventory.AlertWindowDays < 0 {
		return errors.New("EXPIRATION_ALERT_WINDOW_DAYS must not be negative")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.ManagerID == "":
			return errors.New("WHATSAPP_MANAGER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	return nil
}

// Location resolves the configured reporting timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}
