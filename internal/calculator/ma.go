package calculator

import "UpriseScanner/internal/model"

// Mean returns the arithmetic mean; an empty slice yields 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SMA is the rolling simple average of optional values. An index is defined
// only when the whole window behind it is defined.
func SMA(values []model.Value, period int) []model.Value {
	out := make([]model.Value, len(values))
	if period <= 0 {
		return out
	}
	sum := 0.0
	valid := 0
	for i, v := range values {
		if v.Valid {
			sum += v.V
			valid++
		}
		if i >= period {
			if old := values[i-period]; old.Valid {
				sum -= old.V
				valid--
			}
		}
		if i >= period-1 && valid == period {
			out[i] = model.Some(sum / float64(period))
		}
	}
	return out
}

// EMA is the exponential moving average with alpha = 2/(span+1), seeded by
// the first value so no index looks ahead.
func EMA(values []float64, span int) []model.Value {
	if span <= 0 {
		return make([]model.Value, len(values))
	}
	return smooth(defined(values), 2.0/float64(span+1))
}

// smooth applies recursive exponential smoothing with the given alpha.
// Leading undefined inputs stay undefined; the first defined input seeds the
// average. A later undefined input carries the previous average forward.
func smooth(values []model.Value, alpha float64) []model.Value {
	out := make([]model.Value, len(values))
	var avg float64
	seeded := false
	for i, v := range values {
		switch {
		case !v.Valid && !seeded:
			continue
		case !seeded:
			avg = v.V
			seeded = true
		case v.Valid:
			avg += alpha * (v.V - avg)
		}
		out[i] = model.Some(avg)
	}
	return out
}

func defined(values []float64) []model.Value {
	out := make([]model.Value, len(values))
	for i, v := range values {
		out[i] = model.Some(v)
	}
	return out
}
