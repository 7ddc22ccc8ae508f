// Package gate holds the pass/fail filters applied to a candidate before any
// indicator is computed. Every gate is a pure function of its Input.
package gate

import "UpriseScanner/internal/model"

// Reasons shared across gates.
const (
	ReasonInsufficientHistory = "insufficient history"
	ReasonSkipped             = "skipped: upstream gate failed"
)

// Observation is today's quote for the instrument under test.
type Observation struct {
	Price  float64
	Volume int64
}

// Input is everything a gate may look at.
type Input struct {
	Series       model.Series
	Today        Observation
	Fundamentals model.Fundamentals
}

// NewInput builds an Input, filling Today from the candidate quote or, when
// the quote is empty, from the newest bar of the series.
func NewInput(series model.Series, c model.Candidate, f model.Fundamentals) Input {
	today := Observation{Price: c.Price, Volume: c.Volume}
	if last, ok := series.Last(); ok {
		if today.Price == 0 {
			today.Price = last.CloseF()
		}
		if today.Volume == 0 {
			today.Volume = last.Volume
		}
	}
	return Input{Series: series, Today: today, Fundamentals: f}
}

// Gate is a single screening filter.
type Gate interface {
	Name() string
	Evaluate(in Input) model.GateResult
}

func pass(g Gate, reason string) model.GateResult {
	return model.GateResult{Gate: g.Name(), Passed: true, Reason: reason}
}

func fail(g Gate, reason string) model.GateResult {
	return model.GateResult{Gate: g.Name(), Passed: false, Reason: reason}
}

// Chain evaluates gates in order and stops at the first failure.
type Chain struct {
	gates []Gate
}

func NewChain(gates ...Gate) *Chain {
	return &Chain{gates: gates}
}

// Names lists the gates in evaluation order.
func (c *Chain) Names() []string {
	out := make([]string, len(c.gates))
	for i, g := range c.gates {
		out[i] = g.Name()
	}
	return out
}

// Evaluate returns one GateResult per gate. Gates after the first failure are
// not run and are recorded as skipped.
func (c *Chain) Evaluate(in Input) (trail []model.GateResult, passed bool) {
	trail = make([]model.GateResult, 0, len(c.gates))
	passed = true
	for _, g := range c.gates {
		if !passed {
			trail = append(trail, fail(g, ReasonSkipped))
			continue
		}
		res := g.Evaluate(in)
		trail = append(trail, res)
		passed = res.Passed
	}
	return trail, passed
}

// Skipped returns a trail marking every gate as skipped, used when the
// candidate never reached the chain.
func (c *Chain) Skipped() []model.GateResult {
	trail := make([]model.GateResult, len(c.gates))
	for i, g := range c.gates {
		trail[i] = fail(g, ReasonSkipped)
	}
	return trail
}
