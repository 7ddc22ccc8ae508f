package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"UpriseScanner/internal/notifier"
	"UpriseScanner/internal/provider"
	"UpriseScanner/internal/recorder"
	"UpriseScanner/internal/scanner"
)

// ErrScanInProgress is returned when a scan is requested while one runs.
var ErrScanInProgress = errors.New("scan already in progress")

// Messenger delivers formatted reports.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options controls what a scheduled scan screens.
type Options struct {
	// Codes, when set, replaces candidate discovery.
	Codes      []string
	Limit      int
	RunTimeout time.Duration
	Retries    int
	Location   *time.Location
}

// Scheduler runs scans on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *scanner.Pipeline
	Source   provider.CandidateSource
	Notifier Messenger
	Recorder recorder.Recorder
	Ctx      context.Context

	opts    Options
	running atomic.Bool
}

// NewScheduler creates a Scheduler. Source may be nil when opts.Codes is set.
func NewScheduler(ctx context.Context, p *scanner.Pipeline, src provider.CandidateSource, msg Messenger, rec recorder.Recorder, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(opts.Location)),
		Pipeline: p,
		Source:   src,
		Notifier: msg,
		Recorder: rec,
		Ctx:      ctx,
		opts:     opts,
	}
}

// Register adds the scan task.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	log.Info().Str("cron", scanCron).Str("tz", s.opts.Location.String()).Msg("scan task registered")
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron and waits for a running task to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) scanTask() {
	if _, err := s.RunNow(); err != nil {
		log.Error().Err(err).Msg("scheduled scan")
	}
}

// RunNow screens immediately, records the run and sends the report.
func (s *Scheduler) RunNow() (*scanner.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.running.Store(false)

	ctx := s.Ctx
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	var (
		report *scanner.Report
		err    error
	)
	if len(s.opts.Codes) > 0 {
		report = s.Pipeline.Run(ctx, scanner.Codes(s.opts.Codes...))
	} else {
		report, err = s.Pipeline.RunDiscovered(ctx, s.Source, s.opts.Limit)
	}
	if err != nil {
		s.trySend(fmt.Sprintf("❌ Candidate discovery failed: %v", err))
		return nil, err
	}

	if err := s.Recorder.RecordRun(report); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("record run")
	}
	s.trySend(notifier.FormatScanReport(report))
	return report, nil
}

const help = "Commands:\n" +
	"• /scan - screen candidates now\n" +
	"• /analyze &lt;code&gt; - technical report for one instrument\n" +
	"• /fundamentals &lt;code&gt; - financial health report\n" +
	"• /runs - recent runs"

// HandleCommand processes a chat command and returns the reply. /scan
// replies through the regular report delivery and returns "".
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help
	}
	name := fields[0]
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	log.Info().Str("command", name).Str("arg", arg).Msg("command received")

	switch name {
	case "/scan":
		if _, err := s.RunNow(); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return ""
	case "/analyze":
		if arg == "" {
			return "usage: /analyze &lt;code&gt;"
		}
		a, err := s.Pipeline.Analyze(ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if err := s.Recorder.RecordAnalysis(a); err != nil {
			log.Error().Err(err).Str("code", arg).Msg("record analysis")
		}
		return notifier.FormatAnalysis(a)
	case "/fundamentals":
		if arg == "" {
			return "usage: /fundamentals &lt;code&gt;"
		}
		h, err := s.Pipeline.AssessHealth(ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatHealth(h)
	case "/runs":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRuns(runs)
	default:
		return help
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, s.opts.Retries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
