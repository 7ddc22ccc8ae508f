package scanner

import (
	"sort"
	"time"

	"UpriseScanner/internal/model"
)

// Report is the outcome of one run. Results and Rejected are sorted by code.
type Report struct {
	RunID      string
	Provider   string
	StartedAt  time.Time
	FinishedAt time.Time
	Candidates int
	Results    []model.ScreeningResult
	Rejected   []model.Rejection
	// Partial is set when the run was cancelled before every candidate
	// reached a terminal state.
	Partial bool
}

func (r *Report) Elapsed() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// ByVerdict returns the results with verdict v, in code order.
func (r *Report) ByVerdict(v model.Verdict) []model.ScreeningResult {
	var out []model.ScreeningResult
	for _, res := range r.Results {
		if res.Verdict == v {
			out = append(out, res)
		}
	}
	return out
}

// Buys returns StrongBuy then Buy results, highest score first.
func (r *Report) Buys() []model.ScreeningResult {
	out := append(r.ByVerdict(model.StrongBuy), r.ByVerdict(model.Buy)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// RejectedAt counts rejections per stage.
func (r *Report) RejectedAt() map[string]int {
	out := map[string]int{}
	for _, rej := range r.Rejected {
		out[rej.Stage]++
	}
	return out
}
