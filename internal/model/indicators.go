package model

import (
	"fmt"
	"time"
)

// Value is an optional indicator reading. Valid is false while the indicator's
// window has not filled, which is distinct from a computed zero.
type Value struct {
	V     float64
	Valid bool
}

func Some(v float64) Value { return Value{V: v, Valid: true} }

// None is the undefined reading.
var None = Value{}

func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.V)
}

// IndicatorSnapshot holds every derived value for one bar of a Series.
type IndicatorSnapshot struct {
	Date       time.Time
	Close      float64
	MACDLine   Value
	MACDSignal Value
	MACDHist   Value
	RSI        Value
	FastK      Value
	SlowK      Value
	SlowD      Value
	OBV        Value
}
