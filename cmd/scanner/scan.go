package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"UpriseScanner/internal/notifier"
	"UpriseScanner/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Screen candidates once and print the results",
	Long: `Screens the given codes, or the provider's rising-stocks list when no
codes are given, and prints emitted signals and rejections. Ctrl+C stops
issuing work and prints what completed.`,
	RunE: runScan,
}

var (
	scanCodes       []string
	scanConcurrency int
	scanLookback    int
	scanLimit       int
	scanNotify      bool
)

func init() {
	scanCmd.Flags().StringSliceVar(&scanCodes, "codes", nil, "instrument codes to screen instead of discovery")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 0, "instruments screened in parallel")
	scanCmd.Flags().IntVar(&scanLookback, "lookback", 0, "days of history to fetch")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "maximum discovered candidates")
	scanCmd.Flags().BoolVar(&scanNotify, "notify", false, "also send the report to Telegram")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Scan.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Scan.RunTimeout)
		defer cancel()
	}

	p, src, err := buildSources(cfg)
	if err != nil {
		return err
	}
	sc := cfg.ScannerConfig()
	if scanConcurrency > 0 {
		sc.Concurrency = scanConcurrency
	}
	if scanLookback > 0 {
		sc.LookbackDays = scanLookback
	}
	pipeline := scanner.New(p, sc)
	eff := pipeline.Config()
	log.Debug().Int("concurrency", eff.Concurrency).Int("lookback_days", eff.LookbackDays).
		Float64("strong_buy", eff.Policy.Thresholds.StrongBuy).Msg("effective scan settings")

	codes := scanCodes
	if len(codes) == 0 {
		codes = cfg.Scan.Codes
	}
	limit := cfg.Scan.Limit
	if scanLimit > 0 {
		limit = scanLimit
	}

	var report *scanner.Report
	if len(codes) > 0 {
		report = pipeline.Run(ctx, scanner.Codes(codes...))
	} else if report, err = pipeline.RunDiscovered(ctx, src, limit); err != nil {
		return err
	}

	rec := openRecorder(cfg)
	defer rec.Close()
	if err := rec.RecordRun(report); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("record run")
	}

	if scanNotify {
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err := tn.SendWithRetry(context.Background(), notifier.FormatScanReport(report), cfg.Telegram.Retries); err != nil {
			log.Error().Err(err).Msg("send report")
		}
	}
	return notifier.RenderConsole(cmd.OutOrStdout(), report)
}
