package model

// Metric names a fundamentals field.
type Metric string

const (
	OperatingIncome Metric = "operating_income"
	DebtRatio       Metric = "debt_ratio"
	ReserveRatio    Metric = "reserve_ratio"
	PER             Metric = "per"
	PBR             Metric = "pbr"
	ROE             Metric = "roe"
	IndustryPER     Metric = "industry_per"
)

// Metrics lists every known metric in display order.
var Metrics = []Metric{OperatingIncome, DebtRatio, ReserveRatio, PER, PBR, ROE, IndustryPER}

// Fundamentals is a sparse snapshot. A missing key means unknown, never zero.
type Fundamentals map[Metric]float64

func (f Fundamentals) Get(m Metric) (float64, bool) {
	v, ok := f[m]
	return v, ok
}

// Clone returns an independent copy.
func (f Fundamentals) Clone() Fundamentals {
	out := make(Fundamentals, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
