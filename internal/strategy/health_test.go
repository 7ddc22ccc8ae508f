package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"UpriseScanner/internal/model"
)

func TestAssessFundamentals(t *testing.T) {
	cases := []struct {
		name       string
		f          model.Fundamentals
		stability  Light
		earnings   Light
		valuation  Light
		relative   Light
		wantGreens int
	}{
		{
			name:       "all green",
			f:          model.Fundamentals{model.DebtRatio: 50, model.ReserveRatio: 800, model.PER: 8, model.PBR: 0.8, model.IndustryPER: 12},
			stability:  Green,
			earnings:   Green,
			valuation:  Green,
			relative:   Green,
			wantGreens: 3,
		},
		{
			name:       "caution bands",
			f:          model.Fundamentals{model.DebtRatio: 200, model.ReserveRatio: 200, model.PER: 15, model.PBR: 0.9, model.IndustryPER: 15},
			stability:  Yellow,
			earnings:   Yellow,
			valuation:  Yellow,
			relative:   Red,
			wantGreens: 0,
		},
		{
			name:       "red",
			f:          model.Fundamentals{model.DebtRatio: 250, model.ReserveRatio: 100, model.PER: 30, model.PBR: 3},
			stability:  Red,
			earnings:   Red,
			valuation:  Red,
			relative:   Gray,
			wantGreens: 0,
		},
		{
			name:      "missing everything",
			f:         model.Fundamentals{},
			stability: Gray,
			earnings:  Gray,
			valuation: Gray,
			relative:  Gray,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := AssessFundamentals(tc.f)
			assert.Equal(t, tc.stability, r.Stability.Light)
			assert.Equal(t, tc.earnings, r.EarningsCapacity.Light)
			assert.Equal(t, tc.valuation, r.Valuation.Light)
			assert.Equal(t, tc.relative, r.RelativeValuation.Light)
			assert.Equal(t, tc.wantGreens, r.Greens)
		})
	}
}

func TestHealthSummary(t *testing.T) {
	assert.Contains(t, HealthReport{Greens: 3}.Summary(), "strong")
	assert.Contains(t, HealthReport{Greens: 0}.Summary(), "high risk")
	assert.Equal(t, "2 of 3 aspects green", HealthReport{Greens: 2}.Summary())
}
