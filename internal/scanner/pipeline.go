// Package scanner runs the screening pipeline: fetch, gate, compute
// indicators, score and emit, one instrument at a time over a bounded pool.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"UpriseScanner/internal/calculator"
	"UpriseScanner/internal/gate"
	"UpriseScanner/internal/model"
	"UpriseScanner/internal/provider"
	"UpriseScanner/internal/strategy"
)

const (
	DefaultConcurrency  = 5
	DefaultLookbackDays = 750
)

// Rejection stages and reasons.
const (
	StageFetch = "fetch"
	StageGate  = "gate"

	ReasonFetchError     = "fetch-error"
	ReasonMalformedInput = "malformed-input"
)

// Config is everything a run can override. Zero fields take defaults.
type Config struct {
	Concurrency  int
	LookbackDays int
	Gates        gate.Thresholds
	Policy       strategy.Policy
	Indicators   calculator.Params
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = DefaultLookbackDays
	}
	c.Gates = c.Gates.Merge()
	c.Policy = c.Policy.Merge()
	c.Indicators = c.Indicators.Merge()
	return c
}

// Pipeline screens candidates against one provider. It holds no per-run
// state and may run concurrently.
type Pipeline struct {
	provider provider.Provider
	chain    *gate.Chain
	breakout gate.PullbackBreakoutGate
	cfg      Config
	now      func() time.Time
}

func New(p provider.Provider, cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		provider: p,
		chain:    gate.DefaultChain(cfg.Gates),
		breakout: gate.Breakout(cfg.Gates),
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithChain replaces the gate chain.
func (p *Pipeline) WithChain(c *gate.Chain) *Pipeline {
	p.chain = c
	return p
}

func (p *Pipeline) Config() Config { return p.cfg }

// outcome is the terminal state of one candidate; exactly one field is set.
type outcome struct {
	result    *model.ScreeningResult
	rejection *model.Rejection
}

// Run screens candidates concurrently and returns the results sorted by
// code. Per-instrument failures become rejections. Cancelling ctx stops
// issuing work; the report then holds what completed and Partial is set.
// Duplicate codes are screened once.
func (p *Pipeline) Run(ctx context.Context, candidates []model.Candidate) *Report {
	report := &Report{
		RunID:     uuid.NewString(),
		Provider:  p.provider.Name(),
		StartedAt: p.now(),
	}
	candidates = dedupe(candidates)
	report.Candidates = len(candidates)
	logger := log.With().Str("run_id", report.RunID).Logger()
	logger.Info().Int("candidates", len(candidates)).Int("concurrency", p.cfg.Concurrency).Msg("scan started")

	var (
		mu       sync.Mutex
		finished int
		g        errgroup.Group
	)
	g.SetLimit(p.cfg.Concurrency)
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		c := c
		g.Go(func() error {
			out, done := p.process(ctx, c)
			if !done {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			finished++
			if out.result != nil {
				report.Results = append(report.Results, *out.result)
			} else {
				report.Rejected = append(report.Rejected, *out.rejection)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Partial = finished < len(candidates)
	report.FinishedAt = p.now()
	sort.Slice(report.Results, func(i, j int) bool { return report.Results[i].Code < report.Results[j].Code })
	sort.Slice(report.Rejected, func(i, j int) bool { return report.Rejected[i].Code < report.Rejected[j].Code })

	ev := logger.Info()
	if report.Partial {
		ev = logger.Warn().Err(ctx.Err())
	}
	ev.Int("results", len(report.Results)).Int("rejected", len(report.Rejected)).
		Bool("partial", report.Partial).Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("scan finished")
	return report
}

func dedupe(candidates []model.Candidate) []model.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Code == "" || seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		out = append(out, c)
	}
	return out
}

// process takes one candidate to a terminal state. done is false when ctx
// was cancelled before that state was reached.
func (p *Pipeline) process(ctx context.Context, c model.Candidate) (outcome, bool) {
	if ctx.Err() != nil {
		return outcome{}, false
	}
	logger := log.With().Str("code", c.Code).Logger()

	series, err := p.provider.FetchHistory(ctx, c.Code, p.cfg.LookbackDays)
	if err != nil && !errors.Is(err, model.ErrDataUnavailable) {
		if ctx.Err() != nil {
			return outcome{}, false
		}
		return p.fetchRejection(c, err), true
	}
	if err != nil {
		logger.Debug().Err(err).Msg("history unavailable")
		series = model.Series{Code: c.Code}
	}

	fundamentals, err := p.provider.FetchFundamentals(ctx, c.Code)
	if err != nil && !errors.Is(err, model.ErrDataUnavailable) {
		if ctx.Err() != nil {
			return outcome{}, false
		}
		return p.fetchRejection(c, err), true
	}
	if fundamentals == nil {
		fundamentals = model.Fundamentals{}
	}

	in := gate.NewInput(series, c, fundamentals)
	trail, passed := p.chain.Evaluate(in)
	if !passed {
		failed := firstFailure(trail)
		logger.Debug().Str("gate", failed.Gate).Str("reason", failed.Reason).Msg("rejected")
		return outcome{rejection: &model.Rejection{
			Code:      c.Code,
			Name:      c.Name,
			Stage:     StageGate,
			Reason:    failed.Gate + ": " + failed.Reason,
			GateTrail: trail,
		}}, true
	}

	snapshots := calculator.Compute(series, p.cfg.Indicators)
	sig := strategy.Evaluate(p.cfg.Policy, snapshots)
	res := &model.ScreeningResult{
		Code:      c.Code,
		Name:      c.Name,
		Score:     sig.Score,
		Verdict:   sig.Verdict,
		Factors:   sig.Factors,
		GateTrail: trail,
		Breakout:  p.breakout.Evaluate(in).Passed,
	}
	if n := len(snapshots); n > 0 {
		res.Latest = snapshots[n-1]
		res.AsOf = snapshots[n-1].Date
	}
	logger.Info().Float64("score", sig.Score).Stringer("verdict", sig.Verdict).Bool("breakout", res.Breakout).Msg("emitted")
	return outcome{result: res}, true
}

func (p *Pipeline) fetchRejection(c model.Candidate, err error) outcome {
	reason := ReasonFetchError
	if errors.Is(err, model.ErrMalformedInput) {
		reason = ReasonMalformedInput
	}
	log.Warn().Err(err).Str("code", c.Code).Str("reason", reason).Msg("rejected")
	return outcome{rejection: &model.Rejection{
		Code:      c.Code,
		Name:      c.Name,
		Stage:     StageFetch,
		Reason:    reason,
		Detail:    err.Error(),
		GateTrail: p.chain.Skipped(),
	}}
}

func firstFailure(trail []model.GateResult) model.GateResult {
	for _, r := range trail {
		if !r.Passed {
			return r
		}
	}
	return model.GateResult{}
}

// Discover asks source for up to limit candidates.
func Discover(ctx context.Context, source provider.CandidateSource, limit int) ([]model.Candidate, error) {
	candidates, err := source.DiscoverCandidates(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("discover candidates: %w", err)
	}
	return candidates, nil
}

// RunDiscovered discovers candidates from source and screens them.
func (p *Pipeline) RunDiscovered(ctx context.Context, source provider.CandidateSource, limit int) (*Report, error) {
	candidates, err := Discover(ctx, source, limit)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, candidates), nil
}

// Codes turns bare instrument codes into candidates without a quote.
func Codes(codes ...string) []model.Candidate {
	out := make([]model.Candidate, len(codes))
	for i, c := range codes {
		out[i] = model.Candidate{Code: c}
	}
	return out
}
