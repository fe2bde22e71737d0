package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "DATABASE_URL", "PG_DSN", "TIMEZONE_OFFSET", "HISTORY_WINDOW",
		"TELEGRAM_TOKEN", "ALARM_NOTIFY_TIMEOUT", "REDIS_ADDR", "MQTT_BROKER", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TimezoneOffset != 4*time.Hour || cfg.HistoryWindow != 24*time.Hour || cfg.Alarm.NotifyTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.UsePostgres() || cfg.TelegramEnabled() {
		t.Fatalf("expected memory stores and no bot by default")
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_DSN", "postgres://localhost/thermo")
	t.Setenv("TIMEZONE_OFFSET", "-3h")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ALARM_NOTIFY_TIMEOUT", "bogus")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/thermo" || cfg.TimezoneOffset != -3*time.Hour {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if !cfg.TelegramEnabled() {
		t.Fatalf("expected telegram enabled")
	}
	if cfg.Alarm.NotifyTimeout != 5*time.Second {
		t.Fatalf("invalid duration must fall back, got %s", cfg.Alarm.NotifyTimeout)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`http_addr: ":9000"
history_window: 6h
alarm:
  notify_timeout: 2s
redis:
  addr: localhost:6379
mqtt:
  broker: tcp://localhost:1883
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || cfg.HistoryWindow != 6*time.Hour || cfg.Alarm.NotifyTimeout != 2*time.Second {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Fatalf("nested overlay not applied: %+v", cfg)
	}
	if cfg.MQTT.Topic != "sensors/temperature" {
		t.Fatalf("unset keys must keep env defaults, got %q", cfg.MQTT.Topic)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE_OFFSET", "20h")
	if _, err := Load(); err == nil {
		t.Fatalf("expected out of range offset error")
	}
	t.Setenv("TIMEZONE_OFFSET", "")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing file error")
	}
}
