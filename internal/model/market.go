package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single daily OHLCV bar. Values are copied on every access,
// so a PricePoint never changes after construction.
type PricePoint struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// NewPricePoint builds a bar from float prices, the shape most providers
// return. NaN and infinite prices are ErrMalformedInput; range checks happen
// in NewSeries.
func NewPricePoint(date time.Time, open, high, low, close float64, volume int64) (PricePoint, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{{"open", open}, {"high", high}, {"low", low}, {"close", close}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return PricePoint{}, fmt.Errorf("%w: non-finite %s %v on %s", ErrMalformedInput, f.name, f.v, date.Format(DateLayout))
		}
	}
	return PricePoint{
		Date:   date,
		Open:   decimal.NewFromFloat(open),
		High:   decimal.NewFromFloat(high),
		Low:    decimal.NewFromFloat(low),
		Close:  decimal.NewFromFloat(close),
		Volume: volume,
	}, nil
}

// MustPricePoint is NewPricePoint for fixtures; it panics on non-finite input.
func MustPricePoint(date time.Time, open, high, low, close float64, volume int64) PricePoint {
	p, err := NewPricePoint(date, open, high, low, close, volume)
	if err != nil {
		panic(err)
	}
	return p
}

func (p PricePoint) HighF() float64  { return toFloat(p.High) }
func (p PricePoint) LowF() float64   { return toFloat(p.Low) }
func (p PricePoint) CloseF() float64 { return toFloat(p.Close) }

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func (p PricePoint) validate() error {
	for name, v := range map[string]decimal.Decimal{"open": p.Open, "high": p.High, "low": p.Low, "close": p.Close} {
		if v.IsNegative() {
			return fmt.Errorf("%w: negative %s %s on %s", ErrMalformedInput, name, v, p.Date.Format(DateLayout))
		}
	}
	if !p.Close.IsPositive() {
		return fmt.Errorf("%w: non-positive close %s on %s", ErrMalformedInput, p.Close, p.Date.Format(DateLayout))
	}
	if p.High.LessThan(p.Low) {
		return fmt.Errorf("%w: high %s below low %s on %s", ErrMalformedInput, p.High, p.Low, p.Date.Format(DateLayout))
	}
	if p.Volume < 0 {
		return fmt.Errorf("%w: negative volume %d on %s", ErrMalformedInput, p.Volume, p.Date.Format(DateLayout))
	}
	return nil
}

// DateLayout is the calendar-date format used in logs and records.
const DateLayout = "2006-01-02"

// Series is the daily history of one instrument, oldest first, with strictly
// increasing dates. The zero value is a valid empty series.
type Series struct {
	Code   string
	points []PricePoint
}

// NewSeries validates points and returns a Series owning its own copy of them.
func NewSeries(code string, points []PricePoint) (Series, error) {
	owned := make([]PricePoint, len(points))
	copy(owned, points)
	for i := range owned {
		if err := owned[i].validate(); err != nil {
			return Series{}, fmt.Errorf("series %s: %w", code, err)
		}
		if i > 0 && !owned[i].Date.After(owned[i-1].Date) {
			return Series{}, fmt.Errorf("series %s: %w: date %s not after %s", code, ErrMalformedInput,
				owned[i].Date.Format(DateLayout), owned[i-1].Date.Format(DateLayout))
		}
	}
	return Series{Code: code, points: owned}, nil
}

// MustSeries is NewSeries for fixtures; it panics on invalid input.
func MustSeries(code string, points []PricePoint) Series {
	s, err := NewSeries(code, points)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Series) Len() int { return len(s.points) }

// At returns the i-th bar.
func (s Series) At(i int) PricePoint { return s.points[i] }

// Last returns the newest bar; ok is false for an empty series.
func (s Series) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Tail returns a new Series holding at most the last n bars.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s.points) {
		return s
	}
	return Series{Code: s.Code, points: s.points[len(s.points)-n:]}
}

func (s Series) Closes() []float64 { return s.column(PricePoint.CloseF) }
func (s Series) Highs() []float64  { return s.column(PricePoint.HighF) }
func (s Series) Lows() []float64   { return s.column(PricePoint.LowF) }

func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = float64(p.Volume)
	}
	return out
}

func (s Series) column(f func(PricePoint) float64) []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = f(p)
	}
	return out
}
