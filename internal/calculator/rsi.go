package calculator

import "UpriseScanner/internal/model"

// RSI computes the Wilder-smoothed relative strength index: gains and losses
// are averaged with alpha = 1/period starting from the first price change.
// Index i is defined once period changes have been observed (i >= period).
// When the average loss is zero the RSI is exactly 100.
func RSI(closes []float64, period int) []model.Value {
	out := make([]model.Value, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]model.Value, len(closes))
	losses := make([]model.Value, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		gains[i] = model.Some(gain)
		losses[i] = model.Some(loss)
	}

	alpha := 1.0 / float64(period)
	avgGain := smooth(gains, alpha)
	avgLoss := smooth(losses, alpha)

	for i := period; i < len(closes); i++ {
		out[i] = model.Some(rsiFrom(avgGain[i].V, avgLoss[i].V))
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
