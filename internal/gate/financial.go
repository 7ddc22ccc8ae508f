package gate

import (
	"fmt"
	"strings"

	"UpriseScanner/internal/model"
)

// healthMetrics are the metrics whose negative value disqualifies a company.
var healthMetrics = []model.Metric{model.OperatingIncome, model.PER, model.ROE, model.PBR}

// FinancialHealthGate rejects a company reporting a negative operating
// income, PER, ROE or PBR. Missing metrics do not disqualify.
type FinancialHealthGate struct{}

func (FinancialHealthGate) Name() string { return "FinancialHealth" }

func (g FinancialHealthGate) Evaluate(in Input) model.GateResult {
	var negative []string
	for _, m := range healthMetrics {
		if v, ok := in.Fundamentals.Get(m); ok && v < 0 {
			negative = append(negative, fmt.Sprintf("%s=%g", m, v))
		}
	}
	if len(negative) > 0 {
		return fail(g, "negative "+strings.Join(negative, ", "))
	}
	return pass(g, "no negative metrics")
}

// RequireAll wraps a fundamentals gate and fails when any health metric is
// missing.
type RequireAll struct {
	Inner Gate
}

func (r RequireAll) Name() string { return r.Inner.Name() }

func (r RequireAll) Evaluate(in Input) model.GateResult {
	var missing []string
	for _, m := range healthMetrics {
		if _, ok := in.Fundamentals.Get(m); !ok {
			missing = append(missing, string(m))
		}
	}
	if len(missing) > 0 {
		return fail(r, "missing "+strings.Join(missing, ", "))
	}
	return r.Inner.Evaluate(in)
}
