package gate

import (
	"fmt"

	"UpriseScanner/internal/calculator"
	"UpriseScanner/internal/model"
)

// VolumeSpikeGate passes when today's volume is at least MinRatio times the
// mean volume of the Lookback bars before today.
type VolumeSpikeGate struct {
	Lookback int
	MinRatio float64
}

func (VolumeSpikeGate) Name() string { return "VolumeSpike" }

func (g VolumeSpikeGate) Evaluate(in Input) model.GateResult {
	prior := priorVolumes(in.Series, g.Lookback)
	if g.Lookback <= 0 || len(prior) < g.Lookback {
		return fail(g, ReasonInsufficientHistory)
	}
	avg := calculator.Mean(prior)
	if avg == 0 {
		return fail(g, "zero average volume")
	}
	ratio := float64(in.Today.Volume) / avg
	reason := fmt.Sprintf("volume %d is %.0f%% of %d-day average %.0f", in.Today.Volume, ratio*100, g.Lookback, avg)
	if ratio >= g.MinRatio {
		return pass(g, reason)
	}
	return fail(g, reason)
}

// priorVolumes returns up to n volumes preceding the newest bar.
func priorVolumes(s model.Series, n int) []float64 {
	vols := s.Volumes()
	if len(vols) < 2 || n <= 0 {
		return nil
	}
	vols = vols[:len(vols)-1]
	if len(vols) > n {
		vols = vols[len(vols)-n:]
	}
	return vols
}
