package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"UpriseScanner/internal/notifier"
	"UpriseScanner/internal/scheduler"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled scans and answer Telegram commands",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, src, err := buildSources(cfg)
	if err != nil {
		return err
	}
	rec := openRecorder(cfg)
	defer rec.Close()
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, newPipeline(cfg, p), src, tn, rec, scheduler.Options{
		Codes:      cfg.Scan.Codes,
		Limit:      cfg.Scan.Limit,
		RunTimeout: cfg.Scan.RunTimeout,
		Retries:    cfg.Telegram.Retries,
		Location:   cfg.Location(),
	})
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if cfg.Schedule.RunOnStart || os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("run_on_start enabled, scanning now")
		go sched.RunNow()
	}

	log.Info().Msg("UpriseScanner is running, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}
