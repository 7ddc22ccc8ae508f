// Package provider supplies daily price history, fundamentals and screening
// candidates from Naver Finance, Yahoo Finance, local fixtures or memory.
package provider

import (
	"context"
	"fmt"

	"UpriseScanner/internal/model"
)

// Provider fetches the inputs for one instrument.
type Provider interface {
	Name() string
	// FetchHistory returns up to days daily bars, oldest first.
	FetchHistory(ctx context.Context, code string, days int) (model.Series, error)
	// FetchFundamentals returns the known metrics; unknown metrics are absent.
	FetchFundamentals(ctx context.Context, code string) (model.Fundamentals, error)
}

// CandidateSource proposes instruments to screen.
type CandidateSource interface {
	DiscoverCandidates(ctx context.Context, limit int) ([]model.Candidate, error)
}

// StatusError is a non-200 response from an upstream API.
type StatusError struct {
	Provider string
	URL      string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: status %d, body: %s", e.Provider, e.URL, e.Code, truncate(e.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
