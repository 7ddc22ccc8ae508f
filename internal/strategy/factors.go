package strategy

import (
	"fmt"

	"UpriseScanner/internal/calculator"
	"UpriseScanner/internal/model"
)

const (
	FactorMACD       = "MACD"
	FactorStochastic = "Stochastic"
	FactorRSI        = "RSI"
	FactorOBV        = "OBV"
)

func undefinedFactor(name string) model.FactorScore {
	return model.FactorScore{Name: name, Commentary: "insufficient history"}
}

// scoreMACD rewards a line above both its signal and zero.
func scoreMACD(p Policy, s model.IndicatorSnapshot) model.FactorScore {
	if !s.MACDLine.Valid || !s.MACDSignal.Valid {
		return undefinedFactor(FactorMACD)
	}
	line, sig := s.MACDLine.V, s.MACDSignal.V
	f := model.FactorScore{Name: FactorMACD}
	switch {
	case line > sig && line > 0:
		f.Points = p.Weights.MACDBullish
		f.Commentary = "uptrend"
	case line > sig:
		f.Commentary = "rebound below zero"
	default:
		f.Commentary = "downtrend"
	}
	f.Commentary = fmt.Sprintf("%s (line %.2f / signal %.2f)", f.Commentary, line, sig)
	return f
}

// scoreStochastic rewards a fresh slow %K over %D cross, more so in the low
// zone, and a sustained %K over %D below the overbought level.
func scoreStochastic(p Policy, s model.IndicatorSnapshot, prev *model.IndicatorSnapshot) model.FactorScore {
	if !s.SlowK.Valid || !s.SlowD.Valid {
		return undefinedFactor(FactorStochastic)
	}
	k, d := s.SlowK.V, s.SlowD.V
	fresh := prev != nil && prev.SlowK.Valid && prev.SlowD.Valid && k > d && prev.SlowK.V <= prev.SlowD.V

	f := model.FactorScore{Name: FactorStochastic}
	switch {
	case fresh && k < p.Zones.StochLowZone:
		f.Points = p.Weights.StochLowCross
		f.Commentary = "golden cross in low zone"
	case fresh:
		f.Points = p.Weights.StochCross
		f.Commentary = "golden cross"
	case k > d && k > p.Zones.StochOverbought:
		f.Commentary = "overbought"
	case k > d:
		f.Points = p.Weights.StochRising
		f.Commentary = "rising"
	case k < d:
		f.Commentary = "falling"
	default:
		f.Commentary = "flat"
	}
	f.Commentary = fmt.Sprintf("%s (K %.2f / D %.2f)", f.Commentary, k, d)
	return f
}

func scoreRSI(p Policy, s model.IndicatorSnapshot) model.FactorScore {
	if !s.RSI.Valid {
		return undefinedFactor(FactorRSI)
	}
	rsi := s.RSI.V
	f := model.FactorScore{Name: FactorRSI}
	switch {
	case rsi >= p.Zones.RSIHigh:
		f.Points = p.Weights.RSIOverbought
		f.Commentary = "overbought"
	case rsi <= p.Zones.RSILow:
		f.Points = p.Weights.RSIOversold
		f.Commentary = "oversold"
	case rsi > p.Zones.RSIMid:
		f.Points = p.Weights.RSIBullish
		f.Commentary = "buyers dominate"
	default:
		f.Commentary = "sellers dominate"
	}
	f.Commentary = fmt.Sprintf("%s (%.2f)", f.Commentary, rsi)
	return f
}

// scoreOBV rewards an OBV above the mean of its trailing window, which
// includes the newest value.
func scoreOBV(p Policy, snapshots []model.IndicatorSnapshot) model.FactorScore {
	latest := snapshots[len(snapshots)-1].OBV
	if !latest.Valid {
		return undefinedFactor(FactorOBV)
	}
	window := p.Zones.OBVWindow
	if window <= 0 {
		window = 1
	}
	start := len(snapshots) - window
	if start < 0 {
		start = 0
	}
	var recent []float64
	for _, s := range snapshots[start:] {
		if s.OBV.Valid {
			recent = append(recent, s.OBV.V)
		}
	}
	mean := calculator.Mean(recent)

	f := model.FactorScore{Name: FactorOBV, Commentary: "distribution"}
	if latest.V > mean {
		f.Points = p.Weights.OBVAccumulation
		f.Commentary = "accumulation"
	}
	f.Commentary = fmt.Sprintf("%s (%.0f vs %d-bar mean %.0f)", f.Commentary, latest.V, len(recent), mean)
	return f
}
