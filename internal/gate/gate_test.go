package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpriseScanner/internal/model"
)

type bar struct {
	high, close float64
	volume      int64
}

func seriesOf(t *testing.T, bars []bar) model.Series {
	t.Helper()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		high := b.high
		if high < b.close {
			high = b.close
		}
		points[i] = model.MustPricePoint(start.AddDate(0, 0, i), b.close, high, b.close, b.close, b.volume)
	}
	s, err := model.NewSeries("005930", points)
	require.NoError(t, err)
	return s
}

func flatVolume(n int, v int64) []bar {
	out := make([]bar, n)
	for i := range out {
		out[i] = bar{high: 1000, close: 1000, volume: v}
	}
	return out
}

func TestVolumeSpikeGate(t *testing.T) {
	g := VolumeSpikeGate{Lookback: 20, MinRatio: 2.0}
	series := seriesOf(t, flatVolume(21, 100))

	tests := []struct {
		name   string
		volume int64
		want   bool
	}{
		{"150 percent", 150, false},
		{"exactly 200 percent", 200, true},
		{"300 percent", 300, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Evaluate(Input{Series: series, Today: Observation{Price: 1000, Volume: tt.volume}})
			assert.Equal(t, tt.want, res.Passed, res.Reason)
			assert.Equal(t, "VolumeSpike", res.Gate)
		})
	}
}

func TestVolumeSpikeGate_InsufficientHistory(t *testing.T) {
	g := VolumeSpikeGate{Lookback: 20, MinRatio: 2.0}
	res := g.Evaluate(Input{Series: seriesOf(t, flatVolume(20, 100)), Today: Observation{Volume: 1000}})
	assert.False(t, res.Passed)
	assert.Equal(t, ReasonInsufficientHistory, res.Reason)

	res = g.Evaluate(Input{})
	assert.False(t, res.Passed)
}

func TestVolumeSpikeGate_ZeroAverage(t *testing.T) {
	g := VolumeSpikeGate{Lookback: 20, MinRatio: 2.0}
	res := g.Evaluate(Input{Series: seriesOf(t, flatVolume(21, 0)), Today: Observation{Volume: 500}})
	assert.False(t, res.Passed)
	assert.Equal(t, "zero average volume", res.Reason)
}

func TestSafeZoneGate(t *testing.T) {
	g := SafeZoneGate{MaxPosition: 0.30}
	series := seriesOf(t, []bar{{close: 1000}, {close: 2000}, {close: 1500}})

	tests := []struct {
		price float64
		want  bool
	}{
		{1200, true},
		{1300, true},
		{1301, false},
	}
	for _, tt := range tests {
		res := g.Evaluate(Input{Series: series, Today: Observation{Price: tt.price}})
		assert.Equalf(t, tt.want, res.Passed, "price %.0f: %s", tt.price, res.Reason)
	}
}

func TestSafeZoneGate_Degenerate(t *testing.T) {
	g := SafeZoneGate{MaxPosition: 0.30}
	res := g.Evaluate(Input{Series: seriesOf(t, []bar{{close: 1000}, {close: 1000}}), Today: Observation{Price: 1000}})
	assert.False(t, res.Passed)
	assert.Equal(t, "degenerate range", res.Reason)

	res = g.Evaluate(Input{})
	assert.False(t, res.Passed)
	assert.Equal(t, ReasonInsufficientHistory, res.Reason)
}

func TestSafeZoneGate_Window(t *testing.T) {
	// The 3000 close is outside a 3-bar window.
	series := seriesOf(t, []bar{{close: 3000}, {close: 1000}, {close: 2000}, {close: 1200}})
	in := Input{Series: series, Today: Observation{Price: 1200}}
	assert.True(t, SafeZoneGate{MaxPosition: 0.30}.Evaluate(in).Passed)
	assert.True(t, SafeZoneGate{MaxPosition: 0.30, Window: 3}.Evaluate(in).Passed)

	in.Today.Price = 1500
	assert.True(t, SafeZoneGate{MaxPosition: 0.30}.Evaluate(in).Passed)
	assert.False(t, SafeZoneGate{MaxPosition: 0.30, Window: 3}.Evaluate(in).Passed)
}

func TestFinancialHealthGate(t *testing.T) {
	tests := []struct {
		name string
		f    model.Fundamentals
		want bool
	}{
		{"all good", model.Fundamentals{model.OperatingIncome: 100, model.PER: 10, model.PBR: 1, model.ROE: 5}, true},
		{"deficit", model.Fundamentals{model.OperatingIncome: -10, model.PER: 10, model.PBR: 1, model.ROE: 5}, false},
		{"negative roe only", model.Fundamentals{model.ROE: -5}, false},
		{"all absent", model.Fundamentals{}, true},
		{"nil", nil, true},
		{"negative debt ratio ignored", model.Fundamentals{model.DebtRatio: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FinancialHealthGate{}.Evaluate(Input{Fundamentals: tt.f})
			assert.Equal(t, tt.want, res.Passed, res.Reason)
		})
	}
}

func TestRequireAll(t *testing.T) {
	g := RequireAll{Inner: FinancialHealthGate{}}
	assert.Equal(t, "FinancialHealth", g.Name())
	assert.False(t, g.Evaluate(Input{Fundamentals: model.Fundamentals{}}).Passed)
	assert.False(t, g.Evaluate(Input{Fundamentals: model.Fundamentals{model.PER: 3}}).Passed)
	full := model.Fundamentals{model.OperatingIncome: 1, model.PER: 1, model.PBR: 1, model.ROE: 1}
	assert.True(t, g.Evaluate(Input{Fundamentals: full}).Passed)
}

func TestPullbackBreakoutGate(t *testing.T) {
	g := PullbackBreakoutGate{Lookback: 6}
	bars := []bar{
		{high: 100, close: 90},
		{high: 100, close: 90},
		{high: 105, close: 95},
		{high: 100, close: 90},
		{high: 100, close: 90},
		{high: 100, close: 90},
		{high: 100, close: 90},
		{high: 100, close: 90},
		{high: 110, close: 106},
	}
	assert.True(t, g.Evaluate(Input{Series: seriesOf(t, bars)}).Passed)

	bars[len(bars)-1].close = 104
	assert.False(t, g.Evaluate(Input{Series: seriesOf(t, bars)}).Passed)

	res := g.Evaluate(Input{Series: seriesOf(t, bars[:6])})
	assert.False(t, res.Passed)
	assert.Equal(t, ReasonInsufficientHistory, res.Reason)
}

func TestChain_ShortCircuits(t *testing.T) {
	chain := DefaultChain(DefaultThresholds)
	// 20-day average 100, today 100: volume gate fails first.
	in := Input{
		Series:       seriesOf(t, flatVolume(21, 100)),
		Today:        Observation{Price: 1000, Volume: 100},
		Fundamentals: model.Fundamentals{model.ROE: -1},
	}
	trail, passed := chain.Evaluate(in)
	assert.False(t, passed)
	require.Len(t, trail, 3)
	assert.Equal(t, "VolumeSpike", trail[0].Gate)
	assert.Equal(t, ReasonSkipped, trail[1].Reason)
	assert.Equal(t, ReasonSkipped, trail[2].Reason)
	assert.Equal(t, []string{"VolumeSpike", "SafeZone", "FinancialHealth"}, chain.Names())
}

func TestNewInput_FallsBackToLastBar(t *testing.T) {
	series := seriesOf(t, []bar{{close: 1000, volume: 10}, {close: 1100, volume: 30}})
	in := NewInput(series, model.Candidate{Code: "005930"}, nil)
	assert.Equal(t, 1100.0, in.Today.Price)
	assert.Equal(t, int64(30), in.Today.Volume)

	in = NewInput(series, model.Candidate{Code: "005930", Price: 1050, Volume: 99}, nil)
	assert.Equal(t, 1050.0, in.Today.Price)
	assert.Equal(t, int64(99), in.Today.Volume)
}

func TestThresholds_Merge(t *testing.T) {
	got := Thresholds{VolumeMinRatio: 3, SafeZoneWindow: 250}.Merge()
	assert.Equal(t, 3.0, got.VolumeMinRatio)
	assert.Equal(t, 250, got.SafeZoneWindow)
	assert.Equal(t, 20, got.VolumeLookback)
	assert.Equal(t, 0.30, got.SafeZoneMaxPosition)
}
