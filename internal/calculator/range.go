package calculator

import (
	"errors"
	"math"

	"UpriseScanner/internal/model"
)

// ErrDegenerateRange is returned when a range has zero width.
var ErrDegenerateRange = errors.New("degenerate price range")

// PriceRange returns the lowest and highest value; ok is false when values is empty.
func PriceRange(values []float64) (low, high float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	low, high = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	return low, high, true
}

// RangePosition returns where current sits within [low, high] as a fraction.
// The result is not clamped: a price below the range is negative.
func RangePosition(current, low, high float64) (float64, error) {
	if high == low {
		return 0, ErrDegenerateRange
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	return (current - low) / (high - low), nil
}

// RollingMin returns the minimum of each trailing window, undefined until the
// window fills.
func RollingMin(values []float64, window int) []model.Value {
	return rolling(values, window, math.Min, math.Inf(1))
}

// RollingMax returns the maximum of each trailing window, undefined until the
// window fills.
func RollingMax(values []float64, window int) []model.Value {
	return rolling(values, window, math.Max, math.Inf(-1))
}

func rolling(values []float64, window int, pick func(a, b float64) float64, seed float64) []model.Value {
	out := make([]model.Value, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		acc := seed
		for _, v := range values[i-window+1 : i+1] {
			acc = pick(acc, v)
		}
		out[i] = model.Some(acc)
	}
	return out
}
