// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env         string // APP_ENV (dev, test, prod)
	Port        string // APP_PORT
	StoreDriver string // STORE_DRIVER: mysql or memory

	DB DBConfig

	Location   *time.Location // RESTAURANT_TZ
	Opening    model.Clock    // OPENING_TIME
	Closing    model.Clock    // CLOSING_TIME
	ClosedDays []time.Weekday // CLOSED_WEEKDAY, comma separated or "none"

	RabbitURL      string // RABBITMQ_URL; empty disables event publishing
	EventsQueue    string // RESERVATION_EVENTS_QUEUE
	ReservationLog string // RESERVATION_LOG_PATH

	LogLevel      string        // LOG_LEVEL
	LogFormat     string        // LOG_FORMAT: text or json
	StatsInterval time.Duration // STATS_INTERVAL

	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// DBConfig describes the MySQL connection.
type DBConfig struct {
	User        string
	Pass        string
	Host        string
	Port        string
	Name        string
	AutoMigrate bool
}

// Load reads the environment and validates it.  Database variables are
// only required when the mysql driver is selected.
func Load() (Config, error) {
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		StoreDriver:    strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		EventsQueue:    envStr("RESERVATION_EVENTS_QUEUE", "reservation.events"),
		ReservationLog: envStr("RESERVATION_LOG_PATH", "logs/reservations.log"),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFormat:      envStr("LOG_FORMAT", "text"),
		StatsInterval:  envDur("STATS_INTERVAL", time.Minute),
		DB: DBConfig{
			User:        os.Getenv("DB_USER"),
			Pass:        os.Getenv("DB_PASS"),
			Host:        envStr("DB_HOST", "localhost"),
			Port:        envStr("DB_PORT", "3306"),
			Name:        os.Getenv("DB_NAME"),
			AutoMigrate: envBool("DB_AUTO_MIGRATE", false),
		},
		Redis:     LoadRedisConfig(),
		Cache:     LoadCacheConfig(),
		RateLimit: LoadRateLimitConfig(),
	}

	var errs []error
	switch cfg.StoreDriver {
	case DriverMySQL:
		for key, v := range map[string]string{"DB_USER": cfg.DB.User, "DB_NAME": cfg.DB.Name} {
			if v == "" {
				errs = append(errs, fmt.Errorf("missing required env var: %s", key))
			}
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMySQL, DriverMemory, cfg.StoreDriver))
	}

	loc, err := time.LoadLocation(envStr("RESTAURANT_TZ", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RESTAURANT_TZ: %w", err))
	}
	cfg.Location = loc

	if cfg.Opening, err = model.ParseClock(envStr("OPENING_TIME", "10:30")); err != nil {
		errs = append(errs, fmt.Errorf("OPENING_TIME: %w", err))
	}
	if cfg.Closing, err = model.ParseClock(envStr("CLOSING_TIME", "21:30")); err != nil {
		errs = append(errs, fmt.Errorf("CLOSING_TIME: %w", err))
	}
	if err == nil && cfg.Closing.Before(cfg.Opening) {
		errs = append(errs, errors.New("CLOSING_TIME must not be before OPENING_TIME"))
	}
	if cfg.ClosedDays, err = model.ParseWeekdays(envStr("CLOSED_WEEKDAY", "tuesday")); err != nil {
		errs = append(errs, fmt.Errorf("CLOSED_WEEKDAY: %w", err))
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = time.Minute
	}
	return cfg, errors.Join(errs...)
}
