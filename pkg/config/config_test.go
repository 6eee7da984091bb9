package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

const validYAML = `
http_addr: ":8080"
shutdown_timeout: 5s
business_number: "971501234567"
timezone: "Asia/Dubai"
session:
  store: memory
  ttl: 30m
catalog:
  source: embedded
rate_limit:
  per_minute: 60
  burst: 10
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_ADDR", "BUSINESS_NUMBER", "DB_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "TG_TOKEN", "TG_CHANNEL_ID"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected http settings %+v", cfg)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Location().String() != "Asia/Dubai" {
		t.Fatalf("location = %v", cfg.Location())
	}
	if cfg.TelegramEnabled() {
		t.Fatalf("telegram should be disabled without credentials")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("BUSINESS_NUMBER", "447700900123")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TG_TOKEN", "token")
	t.Setenv("TG_CHANNEL_ID", "@laundry_staff")

	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.BusinessNumber != "447700900123" || cfg.Session.RedisDB != 3 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.TelegramEnabled() {
		t.Fatalf("telegram should be enabled")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		kind errs.Kind
	}{
		{name: "broken yaml", body: "http_addr: [", kind: errs.KindUnknown},
		{name: "business number with plus", body: validYAML, env: map[string]string{"BUSINESS_NUMBER": "+971501234567"}, kind: errs.KindInvalid},
		{name: "redis without addr", body: strings.ReplaceAll(validYAML, "store: memory", "store: redis"), kind: errs.KindInvalid},
		{name: "postgres without dsn", body: strings.ReplaceAll(validYAML, "source: embedded", "source: postgres"), kind: errs.KindInvalid},
		{name: "unknown store", body: strings.ReplaceAll(validYAML, "store: memory", "store: disk"), kind: errs.KindInvalid},
		{name: "unknown timezone", body: strings.ReplaceAll(validYAML, "Asia/Dubai", "Mars/Olympus"), kind: errs.KindInvalid},
		{name: "bad redis db", body: validYAML, env: map[string]string{"REDIS_DB": "zero"}, kind: errs.KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errs.KindOf(err); got != tt.kind {
				t.Fatalf("kind = %q, want %q (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join("..", "..", DefaultPath))
	if err != nil {
		t.Fatalf("shipped config does not load: %v", err)
	}
	if cfg.Session.Store != "memory" || cfg.Catalog.Source != "embedded" {
		t.Fatalf("shipped config should run without infrastructure: %+v", cfg)
	}
}
