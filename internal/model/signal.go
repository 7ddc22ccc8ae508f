package model

import "time"

// Verdict is the discrete recommendation derived from a score.
type Verdict int

const (
	Sell Verdict = iota
	Wait
	Buy
	StrongBuy
)

func (v Verdict) String() string {
	switch v {
	case StrongBuy:
		return "StrongBuy"
	case Buy:
		return "Buy"
	case Wait:
		return "Wait"
	default:
		return "Sell"
	}
}

// FactorScore is one scoring rule's contribution, kept for explainability.
type FactorScore struct {
	Name       string
	Points     float64
	Commentary string
}

// GateResult is the outcome of one screening gate.
type GateResult struct {
	Gate   string `json:"gate"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// Candidate is an instrument proposed for screening, usually from a
// rising-stocks listing. Price and Volume are today's quote; zero means no
// quote is known and the last bar is used instead.
type Candidate struct {
	Code     string
	Name     string
	Price    float64
	DiffRate float64
	Volume   int64
}

// ScreeningResult is the emitted signal for one instrument in one run.
type ScreeningResult struct {
	Code      string
	Name      string
	AsOf      time.Time
	Latest    IndicatorSnapshot
	Score     float64
	Verdict   Verdict
	Factors   []FactorScore
	GateTrail []GateResult
	Breakout  bool
}

// Rejection records why an instrument did not produce a result. Reason is a
// short classification; Detail carries the underlying error text, if any.
type Rejection struct {
	Code      string
	Name      string
	Stage     string
	Reason    string
	Detail    string
	GateTrail []GateResult
}
