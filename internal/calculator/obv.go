package calculator

import "UpriseScanner/internal/model"

// OBV computes on-balance volume: obv[0] = 0, then the bar's volume is added
// on an up close, subtracted on a down close and ignored on an unchanged one.
func OBV(closes, volumes []float64) []model.Value {
	out := make([]model.Value, len(closes))
	if len(closes) == 0 || len(volumes) != len(closes) {
		return out
	}
	total := 0.0
	out[0] = model.Some(0)
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			total += volumes[i]
		case closes[i] < closes[i-1]:
			total -= volumes[i]
		}
		out[i] = model.Some(total)
	}
	return out
}
