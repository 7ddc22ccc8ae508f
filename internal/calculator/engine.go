package calculator

import "UpriseScanner/internal/model"

// Params are the indicator periods.
type Params struct {
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	RSIPeriod  int
	StochK     int
	StochSlow  int
	StochD     int
}

// DefaultParams: MACD(12,26,9), RSI(14), Slow Stochastic(5,3,3).
var DefaultParams = Params{
	MACDFast:   12,
	MACDSlow:   26,
	MACDSignal: 9,
	RSIPeriod:  14,
	StochK:     5,
	StochSlow:  3,
	StochD:     3,
}

// Merge returns p with every non-positive period replaced by its default.
func (p Params) Merge() Params {
	d := DefaultParams
	for _, f := range []struct{ v, def *int }{
		{&p.MACDFast, &d.MACDFast},
		{&p.MACDSlow, &d.MACDSlow},
		{&p.MACDSignal, &d.MACDSignal},
		{&p.RSIPeriod, &d.RSIPeriod},
		{&p.StochK, &d.StochK},
		{&p.StochSlow, &d.StochSlow},
		{&p.StochD, &d.StochD},
	} {
		if *f.v <= 0 {
			*f.v = *f.def
		}
	}
	return p
}

// Compute derives one IndicatorSnapshot per bar. The result is allocated once
// at full length and filled by index; the series is not touched.
func Compute(series model.Series, p Params) []model.IndicatorSnapshot {
	closes := series.Closes()
	macd := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	rsi := RSI(closes, p.RSIPeriod)
	stoch := Stochastic(series.Highs(), series.Lows(), closes, p.StochK, p.StochSlow, p.StochD)
	obv := OBV(closes, series.Volumes())

	out := make([]model.IndicatorSnapshot, series.Len())
	for i := range out {
		out[i] = model.IndicatorSnapshot{
			Date:       series.At(i).Date,
			Close:      closes[i],
			MACDLine:   macd.Line[i],
			MACDSignal: macd.Signal[i],
			MACDHist:   macd.Hist[i],
			RSI:        rsi[i],
			FastK:      stoch.FastK[i],
			SlowK:      stoch.SlowK[i],
			SlowD:      stoch.SlowD[i],
			OBV:        obv[i],
		}
	}
	return out
}
