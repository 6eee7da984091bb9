package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the server looks for its YAML file.
var DefaultPath = filepath.Join("cmd/laundry/etc", "app.yml")

type Config struct {
	HTTPAddr        string        `yaml:"http_addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"required"`
	// BusinessNumber receives the WhatsApp messages, digits only with country code.
	BusinessNumber string   `yaml:"business_number" validate:"required,number,min=7,max=15"`
	Timezone       string   `yaml:"timezone" validate:"required"`
	CORSOrigins    []string `yaml:"cors_origins" validate:"dive,url"`

	Session   SessionConfig   `yaml:"session"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Telegram credentials come from the environment only.
	BotToken  string `yaml:"-"`
	ChannelID string `yaml:"-"`

	location *time.Location
}

type SessionConfig struct {
	Store         string        `yaml:"store" validate:"oneof=memory redis"`
	TTL           time.Duration `yaml:"ttl" validate:"required"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Store redis"`
	RedisDB       int           `yaml:"redis_db" validate:"min=0"`
	RedisPassword string        `yaml:"-"`
}

type CatalogConfig struct {
	Source      string `yaml:"source" validate:"oneof=embedded postgres"`
	PostgreAddr string `yaml:"postgre_addr" validate:"required_if=Source postgres"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute" validate:"required,min=1"`
	Burst     int `yaml:"burst" validate:"required,min=1"`
}

// Location is the parsed Timezone. The booking calendar uses it for "today".
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// TelegramEnabled reports whether staff notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// LoadConfig reads the YAML file at path, applies .env and environment
// overrides and validates the result. A missing .env file is not an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New("failed to read config file").Arg("path", path).Wrap(err)
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.New("failed to unmarshal YAML").Wrap(err)
	}

	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.New("failed to load .env").Wrap(err)
	}
	if err = cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Validate
	if err = validator.New().Struct(cfg); err != nil {
		return nil, errs.Invalid("config validation failed").Wrap(err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errs.Invalid("unknown timezone").Arg("timezone", cfg.Timezone).Wrap(err)
	}
	cfg.location = loc

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.HTTPAddr, "HTTP_ADDR")
	override(&c.BusinessNumber, "BUSINESS_NUMBER")
	override(&c.Catalog.PostgreAddr, "DB_DSN")
	override(&c.Session.RedisAddr, "REDIS_ADDR")
	override(&c.Session.RedisPassword, "REDIS_PASSWORD")
	override(&c.BotToken, "TG_TOKEN")
	override(&c.ChannelID, "TG_CHANNEL_ID")

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errs.Invalid("REDIS_DB must be an integer").Arg("value", v).Wrap(err)
		}
		c.Session.RedisDB = db
	}
	return nil
}
