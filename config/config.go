package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	TelegramToken string
	AdminID       int64 // the only identity allowed to /broadcast

	// Storage configuration
	StorageBackend string // "postgres" or "file"
	DatabaseURL    string
	DataFile       string

	// Reminder configuration
	ReminderHour        int // hour in UTC when the daily reminder fires (0-23)
	ReminderMinute      int
	EscalationDelay     time.Duration
	EscalateUnackedOnly bool

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, reading a .env file first
// when one is present
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		StorageBackend: os.Getenv("STORAGE_BACKEND"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DataFile:       os.Getenv("DATA_FILE"),

		// Reminder defaults: 20:00 UTC trigger, escalation an hour later
		ReminderHour:        20,
		ReminderMinute:      0,
		EscalationDelay:     time.Hour,
		EscalateUnackedOnly: os.Getenv("ESCALATE_UNACKED_ONLY") == "true",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if adminID := os.Getenv("ADMIN_ID"); adminID != "" {
		parsed, err := strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
		}
		config.AdminID = parsed
	}

	// Override defaults if environment variables are set
	if hour := os.Getenv("REMINDER_HOUR"); hour != "" {
		if parsedHour, err := strconv.Atoi(hour); err == nil && parsedHour >= 0 && parsedHour <= 23 {
			config.ReminderHour = parsedHour
		}
	}
	if minute := os.Getenv("REMINDER_MINUTE"); minute != "" {
		if parsedMinute, err := strconv.Atoi(minute); err == nil && parsedMinute >= 0 && parsedMinute <= 59 {
			config.ReminderMinute = parsedMinute
		}
	}
	if delay := os.Getenv("ESCALATION_DELAY"); delay != "" {
		if parsedDelay, err := time.ParseDuration(delay); err == nil && parsedDelay > 0 {
			config.EscalationDelay = parsedDelay
		}
	}

	// Defaults
	if config.StorageBackend == "" {
		config.StorageBackend = StoragePostgres
	}
	if config.DataFile == "" {
		config.DataFile = "data.json"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
		}
		switch config.StorageBackend {
		case StoragePostgres:
			if config.DatabaseURL == "" {
				return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
			}
		case StorageFile:
		default:
			return nil, fmt.Errorf("unknown STORAGE_BACKEND: %s", config.StorageBackend)
		}
	}

	return config, nil
}
