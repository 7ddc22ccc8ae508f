package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(i int) time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i) }

func TestNewSeries_Validation(t *testing.T) {
	tests := []struct {
		name    string
		points  []PricePoint
		wantErr bool
	}{
		{"empty", nil, false},
		{"ordered", []PricePoint{MustPricePoint(day(0), 10, 11, 9, 10, 100), MustPricePoint(day(1), 10, 12, 9, 11, 120)}, false},
		{"duplicate date", []PricePoint{MustPricePoint(day(0), 10, 11, 9, 10, 100), MustPricePoint(day(0), 10, 11, 9, 10, 100)}, true},
		{"out of order", []PricePoint{MustPricePoint(day(2), 10, 11, 9, 10, 100), MustPricePoint(day(1), 10, 11, 9, 10, 100)}, true},
		{"negative volume", []PricePoint{MustPricePoint(day(0), 10, 11, 9, 10, -1)}, true},
		{"negative close", []PricePoint{MustPricePoint(day(0), 10, 11, 0, -3, 1)}, true},
		{"high below low", []PricePoint{MustPricePoint(day(0), 10, 8, 9, 10, 1)}, true},
		{"zero close", []PricePoint{MustPricePoint(day(0), 0, 0, 0, 0, 0)}, true},
		{"zero open halted session", []PricePoint{MustPricePoint(day(0), 0, 10, 10, 10, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeries("000660", tt.points)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPricePoint_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name                   string
		open, high, low, close float64
	}{
		{"nan open", math.NaN(), 1, 1, 1},
		{"inf high", 1, math.Inf(1), 1, 1},
		{"negative inf low", 1, 1, math.Inf(-1), 1},
		{"nan close", 1, 1, 1, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPricePoint(day(0), tt.open, tt.high, tt.low, tt.close, 1)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}

	p, err := NewPricePoint(day(0), 1, 2, 1, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.CloseF())
	assert.Panics(t, func() { MustPricePoint(day(0), math.NaN(), 1, 1, 1, 1) })
}

func TestSeries_DoesNotShareInput(t *testing.T) {
	points := []PricePoint{MustPricePoint(day(0), 10, 11, 9, 10, 100), MustPricePoint(day(1), 10, 12, 9, 11, 120)}
	s, err := NewSeries("035720", points)
	require.NoError(t, err)

	points[0] = MustPricePoint(day(0), 1, 1, 1, 1, 1)
	assert.Equal(t, 10.0, s.At(0).CloseF())

	tail := s.Tail(1)
	assert.Equal(t, 1, tail.Len())
	assert.Equal(t, 2, s.Len())
	last, ok := tail.Last()
	require.True(t, ok)
	assert.Equal(t, int64(120), last.Volume)

	_, ok = Series{}.Last()
	assert.False(t, ok)
}

func TestFundamentals_Sparse(t *testing.T) {
	f := Fundamentals{PER: 8}
	v, ok := f.Get(PER)
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)
	_, ok = f.Get(ROE)
	assert.False(t, ok)

	c := f.Clone()
	c[ROE] = 1
	_, ok = f.Get(ROE)
	assert.False(t, ok)
}
