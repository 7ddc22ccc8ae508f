package calculator

import "UpriseScanner/internal/model"

// MACDResult holds the three aligned MACD series.
type MACDResult struct {
	Line   []model.Value
	Signal []model.Value
	Hist   []model.Value
}

// MACD computes line = EMA(fast) - EMA(slow), signal = EMA(signal) of the
// line and hist = line - signal. Every index is defined; early values are
// less precise because the EMAs are seeded with the first close.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{
		Line:   make([]model.Value, n),
		Signal: make([]model.Value, n),
		Hist:   make([]model.Value, n),
	}
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return res
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	for i := 0; i < n; i++ {
		if emaFast[i].Valid && emaSlow[i].Valid {
			res.Line[i] = model.Some(emaFast[i].V - emaSlow[i].V)
		}
	}

	res.Signal = smooth(res.Line, 2.0/float64(signal+1))
	for i := 0; i < n; i++ {
		if res.Line[i].Valid && res.Signal[i].Valid {
			res.Hist[i] = model.Some(res.Line[i].V - res.Signal[i].V)
		}
	}
	return res
}
