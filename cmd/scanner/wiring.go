package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"UpriseScanner/internal/config"
	"UpriseScanner/internal/provider"
	"UpriseScanner/internal/recorder"
	"UpriseScanner/internal/scanner"
)

// buildSources returns the history provider and the candidate source for
// the configured kind, both wrapped with the retry policy. Yahoo has no
// rising-stocks list, so discovery falls back to Naver.
func buildSources(c *config.Config) (provider.Provider, provider.CandidateSource, error) {
	naver := func() *provider.NaverProvider {
		n := provider.NewNaverProvider(c.HTTP())
		if c.Provider.ChartURL != "" {
			n.ChartURL = c.Provider.ChartURL
		}
		if c.Provider.FinanceURL != "" {
			n.FinanceURL = c.Provider.FinanceURL
		}
		n.MinDiffRate = c.Provider.MinDiffRate
		return n
	}

	var (
		p   provider.Provider
		src provider.CandidateSource
	)
	switch c.Provider.Kind {
	case config.KindNaver:
		n := naver()
		p, src = n, n
	case config.KindYahoo:
		y := provider.NewYahooProvider(c.HTTP())
		if c.Provider.YahooSuffix != "" {
			y.Suffix = c.Provider.YahooSuffix
		}
		p, src = y, naver()
	case config.KindFile:
		f := provider.NewFileProvider(c.Provider.FixtureDir)
		p, src = f, f
	default:
		return nil, nil, fmt.Errorf("unknown provider kind %q", c.Provider.Kind)
	}
	log.Info().Str("provider", p.Name()).Msg("data source selected")
	return provider.WithRetry(p, c.Provider.Retry), provider.SourceWithRetry(src, c.Provider.Retry), nil
}

// openRecorder falls back to the no-op recorder when SQLite is disabled or
// cannot be opened.
func openRecorder(c *config.Config) recorder.Recorder {
	path := c.Database.SQLitePath
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Msg("create database directory failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	rec, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	return rec
}

func newPipeline(c *config.Config, p provider.Provider) *scanner.Pipeline {
	return scanner.New(p, c.ScannerConfig())
}
