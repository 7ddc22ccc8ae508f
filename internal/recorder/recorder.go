package recorder

import (
	"time"

	"UpriseScanner/internal/scanner"
)

// RunSummary is one recorded scan run.
type RunSummary struct {
	RunID      string
	Provider   string
	StartedAt  time.Time
	FinishedAt time.Time
	Candidates int
	Emitted    int
	Rejected   int
	Partial    bool
}

// Recorder keeps an audit trail of scan runs and analyses. Nothing recorded
// is read back as screening input.
type Recorder interface {
	RecordRun(report *scanner.Report) error
	RecordAnalysis(a *scanner.Analysis) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
