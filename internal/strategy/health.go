package strategy

import (
	"fmt"

	"UpriseScanner/internal/model"
)

// Light is a traffic-light grade for one fundamentals aspect.
type Light string

const (
	Green  Light = "GREEN"
	Yellow Light = "YELLOW"
	Red    Light = "RED"
	Gray   Light = "GRAY" // metric unknown
)

// Aspect is one graded part of a HealthReport.
type Aspect struct {
	Name   string
	Light  Light
	Detail string
}

// HealthReport grades a company's fundamentals. Greens counts the green
// lights among stability, earnings capacity and valuation; relative valuation
// is informational.
type HealthReport struct {
	Stability         Aspect
	EarningsCapacity  Aspect
	Valuation         Aspect
	RelativeValuation Aspect
	Greens            int
}

// Traffic-light bands.
const (
	DebtRatioSafe       = 100.0
	DebtRatioCaution    = 200.0
	ReserveRatioStrong  = 500.0
	ReserveRatioAverage = 200.0
	ValuationMaxPBR     = 1.0
	ValuationMaxPER     = 10.0
)

// AssessFundamentals grades the snapshot. Missing metrics grade Gray.
func AssessFundamentals(f model.Fundamentals) HealthReport {
	r := HealthReport{
		Stability:         stability(f),
		EarningsCapacity:  earningsCapacity(f),
		Valuation:         valuation(f),
		RelativeValuation: relativeValuation(f),
	}
	for _, a := range []Aspect{r.Stability, r.EarningsCapacity, r.Valuation} {
		if a.Light == Green {
			r.Greens++
		}
	}
	return r
}

// Summary is a one-line verdict for the report.
func (r HealthReport) Summary() string {
	switch r.Greens {
	case 3:
		return "strong candidate: every aspect green"
	case 0:
		return "high risk: no green aspect"
	default:
		return fmt.Sprintf("%d of 3 aspects green", r.Greens)
	}
}

func stability(f model.Fundamentals) Aspect {
	a := Aspect{Name: "stability (debt ratio)", Light: Gray, Detail: "n/a"}
	debt, ok := f.Get(model.DebtRatio)
	if !ok {
		return a
	}
	switch {
	case debt < DebtRatioSafe:
		a.Light = Green
	case debt <= DebtRatioCaution:
		a.Light = Yellow
	default:
		a.Light = Red
	}
	a.Detail = fmt.Sprintf("%.1f%%", debt)
	return a
}

func earningsCapacity(f model.Fundamentals) Aspect {
	a := Aspect{Name: "earnings capacity (reserve ratio)", Light: Gray, Detail: "n/a"}
	reserve, ok := f.Get(model.ReserveRatio)
	if !ok {
		return a
	}
	switch {
	case reserve >= ReserveRatioStrong:
		a.Light = Green
	case reserve >= ReserveRatioAverage:
		a.Light = Yellow
	default:
		a.Light = Red
	}
	a.Detail = fmt.Sprintf("%.1f%%", reserve)
	return a
}

func valuation(f model.Fundamentals) Aspect {
	a := Aspect{Name: "valuation (PER/PBR)", Light: Gray, Detail: "n/a"}
	per, okPER := f.Get(model.PER)
	pbr, okPBR := f.Get(model.PBR)
	if !okPER || !okPBR {
		return a
	}
	cheapBook, cheapEarnings := pbr <= ValuationMaxPBR, per <= ValuationMaxPER
	switch {
	case cheapBook && cheapEarnings:
		a.Light = Green
	case cheapBook || cheapEarnings:
		a.Light = Yellow
	default:
		a.Light = Red
	}
	a.Detail = fmt.Sprintf("PER %.2f, PBR %.2f", per, pbr)
	return a
}

func relativeValuation(f model.Fundamentals) Aspect {
	a := Aspect{Name: "relative valuation (industry PER)", Light: Gray, Detail: "n/a"}
	per, okPER := f.Get(model.PER)
	industry, okInd := f.Get(model.IndustryPER)
	if !okPER || !okInd || industry == 0 {
		return a
	}
	if per < industry {
		a.Light = Green
		a.Detail = fmt.Sprintf("PER %.2f below industry %.2f", per, industry)
	} else {
		a.Light = Red
		a.Detail = fmt.Sprintf("PER %.2f at or above industry %.2f", per, industry)
	}
	return a
}
