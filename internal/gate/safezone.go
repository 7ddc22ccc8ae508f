package gate

import (
	"errors"
	"fmt"

	"UpriseScanner/internal/calculator"
	"UpriseScanner/internal/model"
)

// SafeZoneGate passes when today's price sits in the lower MaxPosition of the
// closing-price range over the last Window bars (all bars when Window is 0).
type SafeZoneGate struct {
	MaxPosition float64
	Window      int
}

func (SafeZoneGate) Name() string { return "SafeZone" }

func (g SafeZoneGate) Evaluate(in Input) model.GateResult {
	low, high, ok := calculator.PriceRange(in.Series.Tail(g.Window).Closes())
	if !ok {
		return fail(g, ReasonInsufficientHistory)
	}
	pos, err := calculator.RangePosition(in.Today.Price, low, high)
	if errors.Is(err, calculator.ErrDegenerateRange) {
		return fail(g, "degenerate range")
	}
	if err != nil {
		return fail(g, err.Error())
	}
	reason := fmt.Sprintf("price %.0f at %.0f%% of range [%.0f, %.0f]", in.Today.Price, pos*100, low, high)
	if pos <= g.MaxPosition {
		return pass(g, reason)
	}
	return fail(g, reason)
}
