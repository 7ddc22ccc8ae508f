package recorder

import "UpriseScanner/internal/scanner"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *scanner.Report) error        { return nil }
func (n *NoopRecorder) RecordAnalysis(_ *scanner.Analysis) error { return nil }
func (n *NoopRecorder) RecentRuns(_ int) ([]RunSummary, error)   { return nil, nil }
func (n *NoopRecorder) Close() error                             { return nil }

