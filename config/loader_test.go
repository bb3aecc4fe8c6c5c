package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 16181 || cfg.Feed.URL != DefaultFeedURL || cfg.Feed.Format != "geojson" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Matcher.Lines) != len(DefaultLines) || cfg.Matcher.WindowMinutes != 10 || cfg.Matcher.MinSequenceMatches != 2 {
		t.Errorf("unexpected matcher defaults: %+v", cfg.Matcher)
	}
	if cfg.RefreshInterval() != 10*time.Second || cfg.FetchTimeout() != 8*time.Second {
		t.Errorf("unexpected durations: %v %v", cfg.RefreshInterval(), cfg.FetchTimeout())
	}
	if cfg.Feed.KeepTrackedOnFetchError {
		t.Error("fetch errors should wipe tracked matches by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  environment: production
feed:
  url: ./trens.geojson
  refreshIntervalMS: 5000
  keepTrackedOnFetchError: true
matcher:
  lines: [R5, S4]
  timezone: UTC
`)
	t.Setenv("GEOTREN_PORT", "9100")
	t.Setenv("GEOTREN_LINES", "L8, S9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env should override port, got %d", cfg.Server.Port)
	}
	if cfg.Server.Environment != "production" || cfg.Feed.URL != "./trens.geojson" || !cfg.Feed.KeepTrackedOnFetchError {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if len(cfg.Matcher.Lines) != 2 || cfg.Matcher.Lines[0] != "L8" || cfg.Matcher.Lines[1] != "S9" {
		t.Errorf("env lines not applied: %v", cfg.Matcher.Lines)
	}
	if cfg.RefreshInterval() != 5*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval())
	}
	if cfg.Location() != time.UTC {
		t.Errorf("Location = %v", cfg.Location())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad format", body: "feed:\n  format: csv\n"},
		{name: "bad environment", body: "server:\n  environment: staging\n"},
		{name: "bad line code", body: "matcher:\n  lines: [R55]\n"},
		{name: "bad timezone", body: "matcher:\n  timezone: Mars/Olympus\n"},
		{name: "trip updates without gtfsrt", body: "feed:\n  tripUpdatesURL: https://example.com/tu\n"},
		{name: "bad redis addr", body: "redis:\n  addr: nocolon\n"},
		{name: "malformed yaml", body: "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadAppConfigFrom_SetsGlobal(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9200\n")
	if err := LoadAppConfigFrom(path); err != nil {
		t.Fatalf("LoadAppConfigFrom: %v", err)
	}
	if Config.Server.Port != 9200 {
		t.Errorf("global config not set, port %d", Config.Server.Port)
	}
}
