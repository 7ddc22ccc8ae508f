package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"UpriseScanner/internal/config"
	"UpriseScanner/internal/logger"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scanner",
	Short: "KRX breakout screener",
	Long: `Screens KRX equities for short-term breakouts.

Commands:
    scan          screen discovered or given codes once
    analyze       technical report for one instrument
    fundamentals  financial health report for one instrument
    daemon        scheduled scans with Telegram delivery
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	rootCmd.AddCommand(scanCmd, analyzeCmd, fundamentalsCmd, daemonCmd)
}

func initConfig() error {
	loaded, err := config.Load(config.Path(cfgFile))
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logJSON {
		loaded.Log.Format = "json"
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	if err := logger.Init(loaded.Log); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("scanner failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
