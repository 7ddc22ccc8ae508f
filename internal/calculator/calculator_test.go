package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpriseScanner/internal/model"
)

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1000 + 50*math.Sin(float64(i)/3) + float64(i%7)*3
	}
	return out
}

func allUndefined(t *testing.T, values []model.Value) {
	t.Helper()
	for i, v := range values {
		assert.Falsef(t, v.Valid, "index %d should be undefined, got %.4f", i, v.V)
	}
}

func TestEMA_SeededWithFirstValue(t *testing.T) {
	got := EMA([]float64{10, 20, 20}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, model.Some(10), got[0])
	assert.InDelta(t, 15, got[1].V, 1e-9)
	assert.InDelta(t, 17.5, got[2].V, 1e-9)
}

func TestSMA_UndefinedPropagates(t *testing.T) {
	in := []model.Value{model.None, model.Some(1), model.Some(2), model.Some(3), model.None, model.Some(5)}
	got := SMA(in, 2)
	want := []bool{false, false, true, true, false, false}
	for i, w := range want {
		assert.Equalf(t, w, got[i].Valid, "index %d", i)
	}
	assert.InDelta(t, 1.5, got[2].V, 1e-9)
	assert.InDelta(t, 2.5, got[3].V, 1e-9)
}

func TestMACD_DefinedFromFirstPoint(t *testing.T) {
	closes := wave(40)
	res := MACD(closes, 12, 26, 9)
	for i := range closes {
		require.True(t, res.Line[i].Valid)
		require.True(t, res.Signal[i].Valid)
		assert.InDelta(t, res.Line[i].V-res.Signal[i].V, res.Hist[i].V, 1e-9)
	}
	assert.Equal(t, 0.0, res.Line[0].V)
	assert.Empty(t, MACD(nil, 12, 26, 9).Line)
}

func TestRSI_ShortSeriesUndefined(t *testing.T) {
	for n := 0; n <= 14; n++ {
		allUndefined(t, RSI(wave(n), 14))
	}
	got := RSI(wave(15), 14)
	assert.True(t, got[14].Valid)
	assert.False(t, got[13].Valid)
}

func TestRSI_WilderSmoothing(t *testing.T) {
	got := RSI([]float64{1, 2, 1}, 2)
	assert.False(t, got[1].Valid)
	require.True(t, got[2].Valid)
	assert.InDelta(t, 50, got[2].V, 1e-9)
}

func TestRSI_NoLossesIs100(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	got := RSI(closes, 14)
	for i := 14; i < len(got); i++ {
		assert.Equal(t, 100.0, got[i].V)
	}

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 500
	}
	assert.Equal(t, 100.0, RSI(flat, 14)[19].V)
}

func TestRSI_Bounded(t *testing.T) {
	for _, v := range RSI(wave(300), 14) {
		if !v.Valid {
			continue
		}
		assert.GreaterOrEqual(t, v.V, 0.0)
		assert.LessOrEqual(t, v.V, 100.0)
	}
}

func TestStochastic_Windows(t *testing.T) {
	n := 12
	highs, lows, closes := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100 + float64(i)
		highs[i] = closes[i] + 2
		lows[i] = closes[i] - 2
	}
	res := Stochastic(highs, lows, closes, 5, 3, 3)
	for i := 0; i < n; i++ {
		assert.Equalf(t, i >= 4, res.FastK[i].Valid, "fastK %d", i)
		assert.Equalf(t, i >= 6, res.SlowK[i].Valid, "slowK %d", i)
		assert.Equalf(t, i >= 8, res.SlowD[i].Valid, "slowD %d", i)
	}
	// close 104, lowest low 98, highest high 106
	assert.InDelta(t, 75, res.FastK[4].V, 1e-9)

	short := Stochastic(highs[:4], lows[:4], closes[:4], 5, 3, 3)
	allUndefined(t, short.FastK)
	allUndefined(t, short.SlowK)
	allUndefined(t, short.SlowD)
}

func TestStochastic_FlatRangeUndefined(t *testing.T) {
	flat := []float64{10, 10, 10, 10, 10, 10}
	res := Stochastic(flat, flat, flat, 5, 3, 3)
	allUndefined(t, res.FastK)
}

func TestOBV_MonotonicStep(t *testing.T) {
	closes := wave(120)
	volumes := make([]float64, len(closes))
	for i := range volumes {
		volumes[i] = float64(1000 + i*13)
	}
	obv := OBV(closes, volumes)
	require.Equal(t, model.Some(0), obv[0])
	for i := 1; i < len(obv); i++ {
		step := obv[i].V - obv[i-1].V
		switch {
		case closes[i] > closes[i-1]:
			assert.Equal(t, volumes[i], step)
		case closes[i] < closes[i-1]:
			assert.Equal(t, -volumes[i], step)
		default:
			assert.Equal(t, 0.0, step)
		}
	}
	assert.Empty(t, OBV(nil, nil))
}

func TestRangePosition(t *testing.T) {
	pos, err := RangePosition(1300, 1000, 2000)
	require.NoError(t, err)
	assert.InDelta(t, 0.30, pos, 1e-12)

	_, err = RangePosition(1000, 1000, 1000)
	assert.ErrorIs(t, err, ErrDegenerateRange)

	low, high, ok := PriceRange([]float64{1500, 1000, 2000})
	assert.True(t, ok)
	assert.Equal(t, 1000.0, low)
	assert.Equal(t, 2000.0, high)

	_, _, ok = PriceRange(nil)
	assert.False(t, ok)
}

func TestCompute_AlignedAndEmptySafe(t *testing.T) {
	assert.Empty(t, Compute(model.Series{}, DefaultParams))

	closes := wave(60)
	points := make([]model.PricePoint, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		points[i] = model.MustPricePoint(start.AddDate(0, 0, i), c, c+5, c-5, c, int64(1000+i))
	}
	series := model.MustSeries("005930", points)
	snaps := Compute(series, DefaultParams)
	require.Len(t, snaps, 60)
	assert.True(t, snaps[0].MACDLine.Valid)
	assert.False(t, snaps[0].RSI.Valid)
	assert.True(t, snaps[59].RSI.Valid)
	assert.True(t, snaps[59].SlowD.Valid)
	assert.Equal(t, series.At(59).Date, snaps[59].Date)
}

func TestParamsMerge(t *testing.T) {
	assert.Equal(t, DefaultParams, Params{}.Merge())

	p := Params{RSIPeriod: 9, StochK: -1}.Merge()
	assert.Equal(t, 9, p.RSIPeriod)
	assert.Equal(t, DefaultParams.StochK, p.StochK)
	assert.Equal(t, DefaultParams.MACDSlow, p.MACDSlow)
}
