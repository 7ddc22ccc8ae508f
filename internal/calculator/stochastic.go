package calculator

import "UpriseScanner/internal/model"

// StochasticResult holds the aligned slow stochastic series.
type StochasticResult struct {
	FastK []model.Value
	SlowK []model.Value
	SlowD []model.Value
}

// Stochastic computes the slow stochastic oscillator (kPeriod, slowPeriod, dPeriod).
// fastK is undefined until kPeriod bars exist and wherever the kPeriod
// high/low range is zero. slowK and slowD are simple averages that stay
// undefined while any input in their window is undefined.
func Stochastic(highs, lows, closes []float64, kPeriod, slowPeriod, dPeriod int) StochasticResult {
	n := len(closes)
	fastK := make([]model.Value, n)
	if kPeriod > 0 && len(highs) == n && len(lows) == n {
		lowest := RollingMin(lows, kPeriod)
		highest := RollingMax(highs, kPeriod)
		for i := 0; i < n; i++ {
			if !lowest[i].Valid || !highest[i].Valid {
				continue
			}
			width := highest[i].V - lowest[i].V
			if width == 0 {
				continue
			}
			fastK[i] = model.Some((closes[i] - lowest[i].V) / width * 100)
		}
	}
	slowK := SMA(fastK, slowPeriod)
	return StochasticResult{
		FastK: fastK,
		SlowK: slowK,
		SlowD: SMA(slowK, dPeriod),
	}
}
