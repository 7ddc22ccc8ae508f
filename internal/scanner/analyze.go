package scanner

import (
	"context"
	"fmt"
	"time"

	"UpriseScanner/internal/calculator"
	"UpriseScanner/internal/gate"
	"UpriseScanner/internal/model"
	"UpriseScanner/internal/strategy"
)

// Analysis is the ungated technical report for one instrument.
type Analysis struct {
	Code      string
	AsOf      time.Time
	Bars      int
	Snapshots []model.IndicatorSnapshot
	Signal    strategy.Signal
	Breakout  bool
}

// Latest returns the newest snapshot; ok is false for an empty history.
func (a *Analysis) Latest() (model.IndicatorSnapshot, bool) {
	if len(a.Snapshots) == 0 {
		return model.IndicatorSnapshot{}, false
	}
	return a.Snapshots[len(a.Snapshots)-1], true
}

// Analyze scores one instrument without running the gate chain.
func (p *Pipeline) Analyze(ctx context.Context, code string) (*Analysis, error) {
	series, err := p.provider.FetchHistory(ctx, code, p.cfg.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", code, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("analyze %s: %w: empty history", code, model.ErrDataUnavailable)
	}
	snapshots := calculator.Compute(series, p.cfg.Indicators)
	in := gate.NewInput(series, model.Candidate{Code: code}, nil)
	return &Analysis{
		Code:      code,
		AsOf:      snapshots[len(snapshots)-1].Date,
		Bars:      series.Len(),
		Snapshots: snapshots,
		Signal:    strategy.Evaluate(p.cfg.Policy, snapshots),
		Breakout:  p.breakout.Evaluate(in).Passed,
	}, nil
}

// Health is a graded fundamentals snapshot for one instrument.
type Health struct {
	Code         string
	Fundamentals model.Fundamentals
	Report       strategy.HealthReport
	// Gate is the financial health gate verdict on the same snapshot.
	Gate model.GateResult
}

// AssessHealth fetches fundamentals and grades them.
func (p *Pipeline) AssessHealth(ctx context.Context, code string) (*Health, error) {
	f, err := p.provider.FetchFundamentals(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fundamentals %s: %w", code, err)
	}
	var health gate.Gate = gate.FinancialHealthGate{}
	if p.cfg.Gates.StrictFundamentals {
		health = gate.RequireAll{Inner: health}
	}
	return &Health{
		Code:         code,
		Fundamentals: f,
		Report:       strategy.AssessFundamentals(f),
		Gate:         health.Evaluate(gate.Input{Fundamentals: f}),
	}, nil
}
