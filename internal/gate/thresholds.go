package gate

// Thresholds are the tunable gate parameters.
type Thresholds struct {
	VolumeLookback      int     `yaml:"volume_lookback"`
	VolumeMinRatio      float64 `yaml:"volume_min_ratio"`
	SafeZoneMaxPosition float64 `yaml:"safe_zone_max_position"`
	SafeZoneWindow      int     `yaml:"safe_zone_window"` // 0 scans the full supplied history
	BreakoutLookback    int     `yaml:"breakout_lookback"`
	StrictFundamentals  bool    `yaml:"strict_fundamentals"`
}

// DefaultThresholds: 20-day volume average, 200% spike, lower 30% of range,
// 6-day breakout, permissive on missing fundamentals.
var DefaultThresholds = Thresholds{
	VolumeLookback:      20,
	VolumeMinRatio:      2.0,
	SafeZoneMaxPosition: 0.30,
	SafeZoneWindow:      0,
	BreakoutLookback:    6,
}

// Merge returns t with every zero field replaced by its default.
func (t Thresholds) Merge() Thresholds {
	d := DefaultThresholds
	if t.VolumeLookback > 0 {
		d.VolumeLookback = t.VolumeLookback
	}
	if t.VolumeMinRatio > 0 {
		d.VolumeMinRatio = t.VolumeMinRatio
	}
	if t.SafeZoneMaxPosition > 0 {
		d.SafeZoneMaxPosition = t.SafeZoneMaxPosition
	}
	if t.SafeZoneWindow > 0 {
		d.SafeZoneWindow = t.SafeZoneWindow
	}
	if t.BreakoutLookback > 0 {
		d.BreakoutLookback = t.BreakoutLookback
	}
	d.StrictFundamentals = t.StrictFundamentals
	return d
}

// DefaultChain builds VolumeSpike -> SafeZone -> FinancialHealth.
func DefaultChain(t Thresholds) *Chain {
	var health Gate = FinancialHealthGate{}
	if t.StrictFundamentals {
		health = RequireAll{Inner: health}
	}
	return NewChain(
		VolumeSpikeGate{Lookback: t.VolumeLookback, MinRatio: t.VolumeMinRatio},
		SafeZoneGate{MaxPosition: t.SafeZoneMaxPosition, Window: t.SafeZoneWindow},
		health,
	)
}

// Breakout builds the advisory breakout check.
func Breakout(t Thresholds) PullbackBreakoutGate {
	return PullbackBreakoutGate{Lookback: t.BreakoutLookback}
}
