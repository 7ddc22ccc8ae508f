package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"UpriseScanner/internal/model"
)

// MemoryProvider serves preloaded data. It is safe for concurrent use.
type MemoryProvider struct {
	// Delay is applied to every fetch and honours cancellation.
	Delay time.Duration

	mu           sync.RWMutex
	series       map[string]model.Series
	fundamentals map[string]model.Fundamentals
	errs         map[string]error
	candidates   []model.Candidate
	calls        atomic.Int64
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		series:       map[string]model.Series{},
		fundamentals: map[string]model.Fundamentals{},
		errs:         map[string]error{},
	}
}

func (m *MemoryProvider) Name() string { return "memory" }

func (m *MemoryProvider) AddSeries(s model.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.Code] = s
}

func (m *MemoryProvider) SetFundamentals(code string, f model.Fundamentals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundamentals[code] = f.Clone()
}

// SetError makes every fetch for code fail with err.
func (m *MemoryProvider) SetError(code string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[code] = err
}

func (m *MemoryProvider) SetCandidates(c []model.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append([]model.Candidate(nil), c...)
}

// Calls is the number of fetches served, failed ones included.
func (m *MemoryProvider) Calls() int64 { return m.calls.Load() }

func (m *MemoryProvider) wait(ctx context.Context) error {
	m.calls.Add(1)
	if m.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MemoryProvider) FetchHistory(ctx context.Context, code string, days int) (model.Series, error) {
	if err := m.wait(ctx); err != nil {
		return model.Series{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[code]; err != nil {
		return model.Series{}, err
	}
	s, ok := m.series[code]
	if !ok {
		return model.Series{}, fmt.Errorf("%w: no history for %s", model.ErrDataUnavailable, code)
	}
	if days > 0 {
		s = s.Tail(days)
	}
	return s, nil
}

// FetchFundamentals returns an empty snapshot for codes without one.
func (m *MemoryProvider) FetchFundamentals(ctx context.Context, code string) (model.Fundamentals, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errs[code]; err != nil {
		return nil, err
	}
	if f, ok := m.fundamentals[code]; ok {
		return f.Clone(), nil
	}
	return model.Fundamentals{}, nil
}

func (m *MemoryProvider) DiscoverCandidates(ctx context.Context, limit int) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]model.Candidate(nil), m.candidates...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
