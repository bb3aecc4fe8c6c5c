package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFeedURL is the FGC geotren tracker endpoint.
const DefaultFeedURL = "https://geotren.fgc.cat/tracker/trens.geojson"

// DefaultLines is the line-code allow-list used when none is configured.
var DefaultLines = []string{"R5", "R6", "S3", "S4", "S8", "S9", "L8"}

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml.
// A missing file is not an error: defaults and environment overrides still apply.
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return LoadAppConfigFrom(p)
		}
	}
	return LoadAppConfigFrom("")
}

// LoadAppConfigFrom loads the configuration from path. An empty path skips
// the file and builds the configuration from defaults and environment only.
func LoadAppConfigFrom(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Load reads, overrides, defaults and validates a configuration without
// touching the global Config.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	if cfg.Matcher.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Matcher.Timezone); err != nil {
			return fmt.Errorf("matcher.timezone: %w", err)
		}
	}
	if cfg.Feed.TripUpdatesURL != "" && cfg.Feed.Format != "gtfsrt" {
		return errors.New("feed.tripUpdatesURL requires feed.format gtfsrt")
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16181
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Server.Codespace == "" {
		cfg.Server.Codespace = "FGC"
	}
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = DefaultFeedURL
	}
	if cfg.Feed.Format == "" {
		cfg.Feed.Format = "geojson"
	}
	if cfg.Feed.RefreshIntervalMS == 0 {
		cfg.Feed.RefreshIntervalMS = 10000
	}
	if cfg.Feed.TimeoutMS == 0 {
		cfg.Feed.TimeoutMS = 8000
	}
	if len(cfg.Matcher.Lines) == 0 {
		cfg.Matcher.Lines = append([]string(nil), DefaultLines...)
	}
	if cfg.Matcher.WindowMinutes == 0 {
		cfg.Matcher.WindowMinutes = 10
	}
	if cfg.Matcher.MinSequenceMatches == 0 {
		cfg.Matcher.MinSequenceMatches = 2
	}
	if cfg.Matcher.NotableDelayMinutes == 0 {
		cfg.Matcher.NotableDelayMinutes = 2
	}
	if cfg.Matcher.Timezone == "" {
		cfg.Matcher.Timezone = "Europe/Madrid"
	}
	if cfg.Redis.Key == "" {
		cfg.Redis.Key = "geotren:matches:latest"
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "geotren:matches"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "geotren.matches"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "eu-west-1"
	}
}

func applyEnv(cfg *AppConfig) {
	cfg.Server.Port = getEnvInt("GEOTREN_PORT", cfg.Server.Port)
	cfg.Server.Environment = getEnv("GEOTREN_ENV", cfg.Server.Environment)
	cfg.Server.LogLevel = getEnv("GEOTREN_LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Feed.URL = getEnv("GEOTREN_FEED_URL", cfg.Feed.URL)
	cfg.Feed.Format = getEnv("GEOTREN_FEED_FORMAT", cfg.Feed.Format)
	cfg.Schedule.Path = getEnv("GEOTREN_SCHEDULE_PATH", cfg.Schedule.Path)
	cfg.Redis.Addr = getEnv("GEOTREN_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("GEOTREN_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.NATS.URL = getEnv("GEOTREN_NATS_URL", cfg.NATS.URL)
	if v := os.Getenv("GEOTREN_LINES"); v != "" {
		cfg.Matcher.Lines = nil
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				cfg.Matcher.Lines = append(cfg.Matcher.Lines, l)
			}
		}
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// RefreshInterval returns the feed polling period.
func (c *AppConfig) RefreshInterval() time.Duration {
	return time.Duration(c.Feed.RefreshIntervalMS) * time.Millisecond
}

// FetchTimeout returns the per-cycle fetch deadline.
func (c *AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutMS) * time.Millisecond
}

// Location returns the matcher timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Matcher.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
