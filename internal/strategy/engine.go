package strategy

import "UpriseScanner/internal/model"

// Weights are the points each technical rule contributes to the score.
type Weights struct {
	MACDBullish     float64 `yaml:"macd_bullish"`
	StochLowCross   float64 `yaml:"stoch_low_cross"`
	StochCross      float64 `yaml:"stoch_cross"`
	StochRising     float64 `yaml:"stoch_rising"`
	RSIOverbought   float64 `yaml:"rsi_overbought"`
	RSIOversold     float64 `yaml:"rsi_oversold"`
	RSIBullish      float64 `yaml:"rsi_bullish"`
	OBVAccumulation float64 `yaml:"obv_accumulation"`
}

// Zones are the indicator levels the rules compare against.
type Zones struct {
	StochLowZone    float64 `yaml:"stoch_low_zone"`
	StochOverbought float64 `yaml:"stoch_overbought"`
	RSIHigh         float64 `yaml:"rsi_high"`
	RSILow          float64 `yaml:"rsi_low"`
	RSIMid          float64 `yaml:"rsi_mid"`
	OBVWindow       int     `yaml:"obv_window"`
}

// Thresholds are the minimum scores for each verdict above Sell.
type Thresholds struct {
	StrongBuy float64 `yaml:"strong_buy"`
	Buy       float64 `yaml:"buy"`
	Wait      float64 `yaml:"wait"`
}

// Policy bundles everything that encodes the trading philosophy.
type Policy struct {
	Weights    Weights    `yaml:"weights"`
	Zones      Zones      `yaml:"zones"`
	Thresholds Thresholds `yaml:"thresholds"`
}

var DefaultWeights = Weights{
	MACDBullish:     1,
	StochLowCross:   2,
	StochCross:      1,
	StochRising:     0.5,
	RSIOverbought:   -1,
	RSIOversold:     0.5,
	RSIBullish:      1,
	OBVAccumulation: 1,
}

var DefaultZones = Zones{
	StochLowZone:    40,
	StochOverbought: 80,
	RSIHigh:         70,
	RSILow:          30,
	RSIMid:          50,
	OBVWindow:       10,
}

var DefaultThresholds = Thresholds{
	StrongBuy: 4,
	Buy:       3,
	Wait:      1.5,
}

func DefaultPolicy() Policy {
	return Policy{Weights: DefaultWeights, Zones: DefaultZones, Thresholds: DefaultThresholds}
}

// Merge fills the unset parts of p from DefaultPolicy. Zones and thresholds
// merge per field. Weights merge as a whole, since a single zero weight
// switches its rule off.
func (p Policy) Merge() Policy {
	if p.Weights == (Weights{}) {
		p.Weights = DefaultWeights
	}
	z, dz := &p.Zones, DefaultZones
	orDefault(&z.StochLowZone, dz.StochLowZone)
	orDefault(&z.StochOverbought, dz.StochOverbought)
	orDefault(&z.RSIHigh, dz.RSIHigh)
	orDefault(&z.RSILow, dz.RSILow)
	orDefault(&z.RSIMid, dz.RSIMid)
	if z.OBVWindow <= 0 {
		z.OBVWindow = dz.OBVWindow
	}
	t, dt := &p.Thresholds, DefaultThresholds
	orDefault(&t.StrongBuy, dt.StrongBuy)
	orDefault(&t.Buy, dt.Buy)
	orDefault(&t.Wait, dt.Wait)
	return p
}

func orDefault(v *float64, d float64) {
	if *v == 0 {
		*v = d
	}
}

// Signal is the scored outcome for the newest bar.
type Signal struct {
	Score   float64
	Verdict model.Verdict
	Factors []model.FactorScore
}

// MapVerdict maps a score to a verdict, highest threshold first.
func MapVerdict(t Thresholds, score float64) model.Verdict {
	switch {
	case score >= t.StrongBuy:
		return model.StrongBuy
	case score >= t.Buy:
		return model.Buy
	case score >= t.Wait:
		return model.Wait
	default:
		return model.Sell
	}
}

// Evaluate scores the newest snapshot. The previous snapshot is used to detect
// a fresh stochastic cross and the trailing OBV window for accumulation.
// Undefined readings score nothing.
func Evaluate(p Policy, snapshots []model.IndicatorSnapshot) Signal {
	if len(snapshots) == 0 {
		return Signal{Verdict: MapVerdict(p.Thresholds, 0)}
	}
	latest := snapshots[len(snapshots)-1]
	var prev *model.IndicatorSnapshot
	if len(snapshots) > 1 {
		prev = &snapshots[len(snapshots)-2]
	}

	factors := []model.FactorScore{
		scoreMACD(p, latest),
		scoreStochastic(p, latest, prev),
		scoreRSI(p, latest),
		scoreOBV(p, snapshots),
	}
	total := 0.0
	for _, f := range factors {
		total += f.Points
	}
	return Signal{
		Score:   total,
		Verdict: MapVerdict(p.Thresholds, total),
		Factors: factors,
	}
}
