package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ticker != "AAPL" {
		t.Errorf("expected default ticker AAPL, got %s", cfg.Ticker)
	}
	if cfg.Indicators.RSILength != 14 || cfg.Indicators.SMAFast != 50 || cfg.Indicators.SMASlow != 200 {
		t.Errorf("unexpected indicator defaults: %+v", cfg.Indicators)
	}
	if cfg.Peaks.Distance != 10 || *cfg.Peaks.Prominence != 1 {
		t.Errorf("unexpected peak defaults: %+v", cfg.Peaks)
	}
	if cfg.DataSource.Range != "1y" {
		t.Errorf("expected range 1y, got %s", cfg.DataSource.Range)
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0] != "AAPL" {
		t.Errorf("expected watchlist to default to the ticker, got %v", cfg.Watchlist)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
ticker: msft
watchlist: [MSFT, NVDA]
data_source:
  timeout: 10s
indicators:
  sma_fast: 20
peaks:
  prominence: 2.5
database:
  sqlite_path: /tmp/ts.db
`)
	t.Setenv("TICKER", "tsla")
	t.Setenv("PEAKS_DISTANCE", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ticker != "TSLA" {
		t.Errorf("expected env override TSLA, got %s", cfg.Ticker)
	}
	if cfg.Indicators.SMAFast != 20 {
		t.Errorf("expected yaml sma_fast 20, got %d", cfg.Indicators.SMAFast)
	}
	if cfg.Peaks.Distance != 5 || *cfg.Peaks.Prominence != 2.5 {
		t.Errorf("unexpected peaks: %+v", cfg.Peaks)
	}
	if cfg.DataSource.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.DataSource.Timeout)
	}
	if len(cfg.Watchlist) != 2 {
		t.Errorf("expected yaml watchlist, got %v", cfg.Watchlist)
	}
	if cfg.Database.SQLitePath != "/tmp/ts.db" {
		t.Errorf("unexpected sqlite path %s", cfg.Database.SQLitePath)
	}
}

func TestLoad_ExplicitZerosSurviveDefaults(t *testing.T) {
	path := writeConfig(t, `
data_source:
  max_retries: 0
peaks:
  prominence: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.DataSource.MaxRetries != 0 {
		t.Errorf("expected max_retries 0 to be kept, got %d", *cfg.DataSource.MaxRetries)
	}
	if *cfg.Peaks.Prominence != 0 {
		t.Errorf("expected prominence 0 to be kept, got %v", *cfg.Peaks.Prominence)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("explicit zeros should validate: %v", err)
	}
}

func TestLoad_EnvZeroOverridesYAML(t *testing.T) {
	path := writeConfig(t, "data_source:\n  max_retries: 5\n")
	t.Setenv("DATA_SOURCE_MAX_RETRIES", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg.DataSource.MaxRetries != 0 {
		t.Errorf("expected env 0 to override yaml 5, got %d", *cfg.DataSource.MaxRetries)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "ticker: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fast not below slow", func(c *Config) { c.Indicators.SMAFast = 200 }},
		{"negative rsi", func(c *Config) { c.Indicators.RSILength = -1 }},
		{"zero distance", func(c *Config) { c.Peaks.Distance = 0 }},
		{"negative prominence", func(c *Config) { c.Peaks.Prominence = ptr(-1.0) }},
		{"negative retries", func(c *Config) { c.DataSource.MaxRetries = ptr(-1) }},
		{"bad cron", func(c *Config) { c.Schedule.WatchCron = "every tuesday" }},
		{"empty ticker", func(c *Config) { c.Ticker = "" }},
		{"empty range", func(c *Config) { c.DataSource.Range = "" }},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/ts.yaml")
	if got := Path("custom.yaml"); got != "custom.yaml" {
		t.Errorf("flag should win, got %s", got)
	}
	if got := Path(""); got != "/etc/ts.yaml" {
		t.Errorf("expected CONFIG_PATH, got %s", got)
	}
}
