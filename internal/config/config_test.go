package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpriseScanner/internal/scanner"
	"UpriseScanner/internal/strategy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, KindNaver, cfg.Provider.Kind)
	assert.Equal(t, scanner.DefaultConcurrency, cfg.Scan.Concurrency)
	assert.Equal(t, "0 40 15 * * 1-5", cfg.Schedule.ScanCron)
	assert.Equal(t, strategy.DefaultPolicy(), cfg.Score)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverlaysYAMLOnDefaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  kind: file
  fixture_dir: testdata
  retry:
    max_attempts: 5
    base_delay: 250ms
scan:
  concurrency: 8
  codes: ["005930", "000660"]
gates:
  volume_min_ratio: 3
score:
  weights:
    macd_bullish: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, KindFile, cfg.Provider.Kind)
	assert.Equal(t, 5, cfg.Provider.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Provider.Retry.BaseDelay)
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, []string{"005930", "000660"}, cfg.Scan.Codes)
	assert.Equal(t, 3.0, cfg.Gates.VolumeMinRatio)
	assert.Equal(t, 20, cfg.Gates.VolumeLookback)
	assert.Equal(t, 2.0, cfg.Score.Weights.MACDBullish)
	assert.Equal(t, strategy.DefaultWeights.StochLowCross, cfg.Score.Weights.StochLowCross)
	assert.Equal(t, strategy.DefaultThresholds, cfg.Score.Thresholds)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SCAN_CONCURRENCY", "3")
	t.Setenv("SCAN_LOOKBACK_DAYS", "400")
	t.Setenv("CRON_SCAN", "0 0 16 * * 1-5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "telegram:\n  bot_token: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, 3, cfg.Scan.Concurrency)
	assert.Equal(t, 400, cfg.Scan.LookbackDays)
	assert.Equal(t, "0 0 16 * * 1-5", cfg.Schedule.ScanCron)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoadBadEnvInt(t *testing.T) {
	t.Setenv("SCAN_CONCURRENCY", "many")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "SCAN_CONCURRENCY")
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "scan: [oops"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown provider", func(c *Config) { c.Provider.Kind = "bloomberg" }, "Kind"},
		{"file without dir", func(c *Config) { c.Provider.Kind = KindFile }, "FixtureDir"},
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = 0 }, "Concurrency"},
		{"bad code", func(c *Config) { c.Scan.Codes = []string{"AAPL"} }, "Codes"},
		{"bad cron", func(c *Config) { c.Schedule.ScanCron = "every day" }, "scan_cron"},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, "timezone"},
		{"unordered thresholds", func(c *Config) { c.Score.Thresholds.Buy = 5 }, "strong_buy > buy > wait"},
		{"safe zone above one", func(c *Config) { c.Gates.SafeZoneMaxPosition = 1.5 }, "safe_zone_max_position"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"zero retry attempts", func(c *Config) { c.Provider.Retry.MaxAttempts = 0 }, "MaxAttempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestRequireTelegram(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.RequireTelegram(), "bot_token")
	cfg.Telegram.BotToken = "t"
	assert.ErrorContains(t, cfg.RequireTelegram(), "chat_id")
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path(""))
	t.Setenv("CONFIG_PATH", "/etc/scanner.yaml")
	assert.Equal(t, "/etc/scanner.yaml", Path(""))
	assert.Equal(t, "cli.yaml", Path("cli.yaml"))
}

func TestScannerConfig(t *testing.T) {
	cfg := Default()
	sc := cfg.ScannerConfig()
	assert.Equal(t, cfg.Scan.Concurrency, sc.Concurrency)
	assert.Equal(t, cfg.Gates, sc.Gates)
	assert.Equal(t, cfg.Score, sc.Policy)
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())
}
