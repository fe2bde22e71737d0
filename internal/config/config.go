package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const maxZoneOffset = 14 * time.Hour

// TelegramConfig configures the bot.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"poll_timeout"`
}

// AlarmConfig configures alarm notifications.
type AlarmConfig struct {
	NotifyTimeout  time.Duration `yaml:"notify_timeout"`
	NotifyTemplate string        `yaml:"notify_template"`
}

// RedisConfig configures the latest-reading cache.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	LatestTTL time.Duration `yaml:"latest_ttl"`
}

// MQTTConfig configures the optional MQTT ingest transport.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// Config is the service configuration.
type Config struct {
	HTTPAddr        string         `yaml:"http_addr"`
	DatabaseURL     string         `yaml:"database_url"`
	TimezoneOffset  time.Duration  `yaml:"timezone_offset"`
	HistoryWindow   time.Duration  `yaml:"history_window"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Telegram        TelegramConfig `yaml:"telegram"`
	Alarm           AlarmConfig    `yaml:"alarm"`
	Redis           RedisConfig    `yaml:"redis"`
	MQTT            MQTTConfig     `yaml:"mqtt"`
}

// Load reads configuration from the environment, then overlays the YAML file
// named by CONFIG_FILE when set.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":5001"),
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		TimezoneOffset:  getenvDuration("TIMEZONE_OFFSET", 4*time.Hour),
		HistoryWindow:   getenvDuration("HISTORY_WINDOW", 24*time.Hour),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Telegram: TelegramConfig{
			Token:       getenvDefault("TELEGRAM_TOKEN", ""),
			PollTimeout: getenvIntDefault("TELEGRAM_POLL_TIMEOUT", 60),
		},
		Alarm: AlarmConfig{
			NotifyTimeout:  getenvDuration("ALARM_NOTIFY_TIMEOUT", 5*time.Second),
			NotifyTemplate: getenvDefault("ALARM_NOTIFY_TEMPLATE", ""),
		},
		Redis: RedisConfig{
			Addr:      getenvDefault("REDIS_ADDR", ""),
			Password:  getenvDefault("REDIS_PASSWORD", ""),
			DB:        getenvIntDefault("REDIS_DB", 0),
			LatestTTL: getenvDuration("LATEST_TTL", 24*time.Hour),
		},
		MQTT: MQTTConfig{
			Broker:   getenvDefault("MQTT_BROKER", ""),
			Topic:    getenvDefault("MQTT_TOPIC", "sensors/temperature"),
			ClientID: getenvDefault("MQTT_CLIENT_ID", "temperature-monitor"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: http_addr is required")
	}
	if c.TimezoneOffset < -maxZoneOffset || c.TimezoneOffset > maxZoneOffset {
		return fmt.Errorf("config: timezone_offset %s out of range", c.TimezoneOffset)
	}
	if c.HistoryWindow <= 0 {
		return errors.New("config: history_window must be positive")
	}
	if c.Alarm.NotifyTimeout <= 0 {
		return errors.New("config: alarm.notify_timeout must be positive")
	}
	return nil
}

// UsePostgres reports whether a database is configured.
func (c Config) UsePostgres() bool { return c.DatabaseURL != "" }

// TelegramEnabled reports whether a bot token is configured.
func (c Config) TelegramEnabled() bool { return c.Telegram.Token != "" }

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
