package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"UpriseScanner/internal/gate"
	"UpriseScanner/internal/logger"
	"UpriseScanner/internal/provider"
	"UpriseScanner/internal/scanner"
	"UpriseScanner/internal/strategy"
)

// DefaultPath is read when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Provider kinds.
const (
	KindNaver = "naver"
	KindYahoo = "yahoo"
	KindFile  = "file"
)

type ProviderConfig struct {
	Kind        string               `yaml:"kind" validate:"oneof=naver yahoo file"`
	FixtureDir  string               `yaml:"fixture_dir" validate:"required_if=Kind file"`
	ChartURL    string               `yaml:"chart_url" validate:"omitempty,url"`
	FinanceURL  string               `yaml:"finance_url" validate:"omitempty,url"`
	YahooSuffix string               `yaml:"yahoo_suffix"`
	Timeout     time.Duration        `yaml:"timeout" validate:"gte=0"`
	RateLimit   float64              `yaml:"rate_limit" validate:"gte=0"`
	UserAgent   string               `yaml:"user_agent"`
	MinDiffRate float64              `yaml:"min_diff_rate" validate:"gte=0"`
	Retry       provider.RetryPolicy `yaml:"retry"`
}

type ScanConfig struct {
	Limit        int           `yaml:"limit" validate:"gte=1,lte=500"`
	Concurrency  int           `yaml:"concurrency" validate:"gte=1,lte=64"`
	LookbackDays int           `yaml:"lookback_days" validate:"gte=30"`
	RunTimeout   time.Duration `yaml:"run_timeout" validate:"gte=0"`
	// Codes, when set, replaces candidate discovery.
	Codes []string `yaml:"codes" validate:"dive,len=6,numeric"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	Retries  int    `yaml:"retries" validate:"gte=0,lte=10"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path"` // empty disables recording
}

type ScheduleConfig struct {
	ScanCron   string `yaml:"scan_cron" validate:"required"`
	Timezone   string `yaml:"timezone" validate:"required"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// Config holds all application configuration.
type Config struct {
	Provider ProviderConfig  `yaml:"provider"`
	Scan     ScanConfig      `yaml:"scan"`
	Gates    gate.Thresholds `yaml:"gates"`
	Score    strategy.Policy `yaml:"score"`
	Telegram TelegramConfig  `yaml:"telegram"`
	Database DatabaseConfig  `yaml:"database"`
	Schedule ScheduleConfig  `yaml:"schedule"`
	Log      logger.Config   `yaml:"log"`
	Proxy    string          `yaml:"proxy"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Kind:        KindNaver,
			YahooSuffix: ".KS",
			Timeout:     provider.DefaultTimeout,
			RateLimit:   provider.DefaultRateLimit,
			MinDiffRate: provider.DefaultMinDiffRate,
			Retry:       provider.DefaultRetryPolicy,
		},
		Scan: ScanConfig{
			Limit:        50,
			Concurrency:  scanner.DefaultConcurrency,
			LookbackDays: scanner.DefaultLookbackDays,
			RunTimeout:   10 * time.Minute,
		},
		Gates:    gate.DefaultThresholds,
		Score:    strategy.DefaultPolicy(),
		Telegram: TelegramConfig{Retries: 3},
		Database: DatabaseConfig{SQLitePath: "data/uprise_scanner.db"},
		Schedule: ScheduleConfig{
			ScanCron: "0 40 15 * * 1-5",
			Timezone: "Asia/Seoul",
		},
		Log: logger.DefaultConfig,
	}
}

// Load layers the YAML file at path over the defaults, then applies
// environment overrides. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves the config file location from flag, then CONFIG_PATH.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	return getEnv("CONFIG_PATH", DefaultPath)
}

func (c *Config) applyEnv() error {
	c.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)
	c.Schedule.ScanCron = getEnv("CRON_SCAN", c.Schedule.ScanCron)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Proxy = getEnv("HTTPS_PROXY", c.Proxy)

	var err error
	if c.Scan.Concurrency, err = getEnvInt("SCAN_CONCURRENCY", c.Scan.Concurrency); err != nil {
		return err
	}
	if c.Scan.LookbackDays, err = getEnvInt("SCAN_LOOKBACK_DAYS", c.Scan.LookbackDays); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

var validate = validator.New()

// Validate checks field constraints, the cron expression, the timezone and
// the ordering of verdict thresholds.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := CronParser.Parse(c.Schedule.ScanCron); err != nil {
		return fmt.Errorf("schedule.scan_cron: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	t := c.Score.Thresholds
	if !(t.StrongBuy > t.Buy && t.Buy > t.Wait) {
		return fmt.Errorf("score.thresholds: need strong_buy > buy > wait, got %.2f/%.2f/%.2f", t.StrongBuy, t.Buy, t.Wait)
	}
	if c.Gates.SafeZoneMaxPosition > 1 {
		return fmt.Errorf("gates.safe_zone_max_position: %.2f exceeds 1", c.Gates.SafeZoneMaxPosition)
	}
	return nil
}

// RequireTelegram checks the settings the daemon cannot run without.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("telegram.chat_id is required")
	}
	return nil
}

// CronParser accepts six-field expressions with a leading seconds field.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Location returns the schedule timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// HTTP returns the client settings shared by the web providers.
func (c *Config) HTTP() provider.HTTPConfig {
	return provider.HTTPConfig{
		Timeout:   c.Provider.Timeout,
		RateLimit: c.Provider.RateLimit,
		Proxy:     c.Proxy,
		UserAgent: c.Provider.UserAgent,
	}
}

// ScannerConfig maps the scan, gate and score sections onto the pipeline.
func (c *Config) ScannerConfig() scanner.Config {
	return scanner.Config{
		Concurrency:  c.Scan.Concurrency,
		LookbackDays: c.Scan.LookbackDays,
		Gates:        c.Gates,
		Policy:       c.Score,
	}
}
