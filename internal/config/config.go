package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Ticker    string   `yaml:"ticker" env:"TICKER, overwrite"`
	Watchlist []string `yaml:"watchlist" env:"WATCHLIST, overwrite"`
	Proxy     string   `yaml:"proxy" env:"HTTPS_PROXY, overwrite"`

	DataSource struct {
		Range      string        `yaml:"range" env:"RANGE, overwrite"`
		Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite"`
		MaxRetries *int          `yaml:"max_retries" env:"MAX_RETRIES, overwrite, noinit"`
		BaseDelay  time.Duration `yaml:"base_delay" env:"BASE_DELAY, overwrite"`
		MaxDelay   time.Duration `yaml:"max_delay" env:"MAX_DELAY, overwrite"`
	} `yaml:"data_source" env:", prefix=DATA_SOURCE_"`
	Indicators struct {
		RSILength int `yaml:"rsi_length" env:"RSI_LENGTH, overwrite"`
		SMAFast   int `yaml:"sma_fast" env:"SMA_FAST, overwrite"`
		SMASlow   int `yaml:"sma_slow" env:"SMA_SLOW, overwrite"`
	} `yaml:"indicators" env:", prefix=INDICATORS_"`
	Peaks struct {
		Distance   int      `yaml:"distance" env:"DISTANCE, overwrite"`
		Prominence *float64 `yaml:"prominence" env:"PROMINENCE, overwrite, noinit"`
	} `yaml:"peaks" env:", prefix=PEAKS_"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH, overwrite"`
	} `yaml:"database"`
	Schedule struct {
		WatchCron string `yaml:"watch_cron" env:"CRON_WATCH, overwrite"`
	} `yaml:"schedule"`
	Server struct {
		Addr        string   `yaml:"addr" env:"ADDR, overwrite"`
		CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS, overwrite"`
	} `yaml:"server" env:", prefix=SERVER_"`
	Cache struct {
		Size int           `yaml:"size" env:"SIZE, overwrite"`
		TTL  time.Duration `yaml:"ttl" env:"TTL, overwrite"`
	} `yaml:"cache" env:", prefix=CACHE_"`
	Telegram struct {
		BotToken string `yaml:"bot_token" env:"BOT_TOKEN, overwrite"`
		ChatID   string `yaml:"chat_id" env:"CHAT_ID, overwrite"`
	} `yaml:"telegram" env:", prefix=TELEGRAM_"`
	Logging LoggingConfig `yaml:"logging" env:", prefix=LOG_"`
}

// LoggingConfig selects log level, format (text|json) and output (stdout|stderr|path).
type LoggingConfig struct {
	Level      string `yaml:"level" env:"LEVEL, overwrite"`
	Format     string `yaml:"format" env:"FORMAT, overwrite"`
	Output     string `yaml:"output" env:"OUTPUT, overwrite"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB, overwrite"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS, overwrite"`
}

// Path returns the config file location: explicit flag, CONFIG_PATH, or the default.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func ptr[T any](v T) *T { return &v }

// applyDefaults fills unset fields. Pointer fields distinguish an explicit
// zero (max_retries: 0, prominence: 0) from an absent key.
func (c *Config) applyDefaults() {
	c.Ticker = strings.ToUpper(strings.TrimSpace(c.Ticker))
	if c.Ticker == "" {
		c.Ticker = "AAPL"
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{c.Ticker}
	}
	if c.DataSource.Range == "" {
		c.DataSource.Range = "1y"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.MaxRetries == nil {
		c.DataSource.MaxRetries = ptr(3)
	}
	if c.DataSource.BaseDelay == 0 {
		c.DataSource.BaseDelay = 500 * time.Millisecond
	}
	if c.DataSource.MaxDelay == 0 {
		c.DataSource.MaxDelay = 5 * time.Second
	}
	if c.Indicators.RSILength == 0 {
		c.Indicators.RSILength = 14
	}
	if c.Indicators.SMAFast == 0 {
		c.Indicators.SMAFast = 50
	}
	if c.Indicators.SMASlow == 0 {
		c.Indicators.SMASlow = 200
	}
	if c.Peaks.Distance == 0 {
		c.Peaks.Distance = 10
	}
	if c.Peaks.Prominence == nil {
		c.Peaks.Prominence = ptr(1.0)
	}
	if c.Schedule.WatchCron == "" {
		c.Schedule.WatchCron = "0 30 16 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 128
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if c.Indicators.RSILength <= 0 {
		return fmt.Errorf("indicators.rsi_length must be positive")
	}
	if c.Indicators.SMAFast <= 0 || c.Indicators.SMASlow <= 0 {
		return fmt.Errorf("indicators.sma_fast and indicators.sma_slow must be positive")
	}
	if c.Indicators.SMAFast >= c.Indicators.SMASlow {
		return fmt.Errorf("indicators.sma_fast (%d) must be below indicators.sma_slow (%d)",
			c.Indicators.SMAFast, c.Indicators.SMASlow)
	}
	if c.Peaks.Distance < 1 {
		return fmt.Errorf("peaks.distance must be >= 1")
	}
	if c.Peaks.Prominence == nil || *c.Peaks.Prominence < 0 {
		return fmt.Errorf("peaks.prominence must not be negative")
	}
	if c.DataSource.Range == "" {
		return fmt.Errorf("data_source.range is required")
	}
	if c.DataSource.MaxRetries == nil || *c.DataSource.MaxRetries < 0 {
		return fmt.Errorf("data_source.max_retries must not be negative")
	}
	if c.Cache.Size <= 0 || c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.size and cache.ttl must be positive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Schedule.WatchCron); err != nil {
		return fmt.Errorf("schedule.watch_cron: %w", err)
	}
	return nil
}
