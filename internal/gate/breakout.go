package gate

import (
	"fmt"

	"UpriseScanner/internal/model"
)

// PullbackBreakoutGate is advisory: it flags a close above the highest high
// of the Lookback bars before today. It never rejects a candidate.
type PullbackBreakoutGate struct {
	Lookback int
}

func (PullbackBreakoutGate) Name() string { return "PullbackBreakout" }

func (g PullbackBreakoutGate) Evaluate(in Input) model.GateResult {
	n := in.Series.Len()
	if g.Lookback <= 0 || n < g.Lookback+1 {
		return fail(g, ReasonInsufficientHistory)
	}
	resistance := in.Series.At(n - 1 - g.Lookback).HighF()
	for i := n - g.Lookback; i < n-1; i++ {
		if h := in.Series.At(i).HighF(); h > resistance {
			resistance = h
		}
	}
	close := in.Series.At(n - 1).CloseF()
	reason := fmt.Sprintf("close %.0f vs %d-day high %.0f", close, g.Lookback, resistance)
	if close > resistance {
		return pass(g, reason)
	}
	return fail(g, reason)
}
