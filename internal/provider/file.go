package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"math"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"

	"UpriseScanner/internal/model"
)

// CandidatesFile is the fixture FileProvider.DiscoverCandidates reads.
const CandidatesFile = "candidates.json"

// FileProvider serves offline fixtures from Dir, one <code>.json per
// instrument:
//
//	{"bars": [{"date": "2024-01-02", "open": 1, "high": 1, "low": 1, "close": 1, "volume": 10}],
//	 "fundamentals": {"per": 8.2, "debt_ratio": 45.1}}
//
// Dates are either 2006-01-02 or 20060102.
type FileProvider struct {
	Dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) load(code string) (gjson.Result, error) {
	path := filepath.Join(f.Dir, code+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return gjson.Result{}, fmt.Errorf("%w: no fixture %s", model.ErrDataUnavailable, path)
	}
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: fixture %s is not valid json", model.ErrMalformedInput, path)
	}
	return gjson.ParseBytes(data), nil
}

func (f *FileProvider) FetchHistory(ctx context.Context, code string, days int) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	doc, err := f.load(code)
	if err != nil {
		return model.Series{}, err
	}
	var points []model.PricePoint
	var parseErr error
	doc.Get("bars").ForEach(func(_, bar gjson.Result) bool {
		date, err := parseFixtureDate(bar.Get("date").String())
		if err != nil {
			parseErr = err
			return false
		}
		p, err := barFromJSON(date, bar.Get("open"), bar.Get("high"), bar.Get("low"), bar.Get("close"), bar.Get("volume"))
		if err != nil {
			parseErr = err
			return false
		}
		points = append(points, p)
		return true
	})
	if parseErr != nil {
		return model.Series{}, fmt.Errorf("fixture %s: %w", code, parseErr)
	}
	s, err := model.NewSeries(code, points)
	if err != nil {
		return model.Series{}, err
	}
	if days > 0 {
		s = s.Tail(days)
	}
	return s, nil
}

// barFromJSON requires every field to be a JSON number; gjson would read
// strings and missing fields as 0.
func barFromJSON(date time.Time, open, high, low, close, volume gjson.Result) (model.PricePoint, error) {
	fields := []struct {
		name string
		v    gjson.Result
	}{{"open", open}, {"high", high}, {"low", low}, {"close", close}, {"volume", volume}}
	for _, f := range fields {
		if f.v.Type != gjson.Number {
			return model.PricePoint{}, fmt.Errorf("%w: %s %q on %s is not a number", model.ErrMalformedInput, f.name, f.v.Raw, date.Format(model.DateLayout))
		}
	}
	if vol := volume.Float(); vol != math.Trunc(vol) {
		return model.PricePoint{}, fmt.Errorf("%w: fractional volume %v on %s", model.ErrMalformedInput, vol, date.Format(model.DateLayout))
	}
	return model.NewPricePoint(date, open.Float(), high.Float(), low.Float(), close.Float(), volume.Int())
}

func parseFixtureDate(s string) (time.Time, error) {
	for _, layout := range []string{model.DateLayout, "20060102"} {
		if t, err := time.ParseInLocation(layout, s, seoul); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", model.ErrMalformedInput, s)
}

// FetchFundamentals returns only numeric metrics the fixture names.
func (f *FileProvider) FetchFundamentals(ctx context.Context, code string) (model.Fundamentals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := f.load(code)
	if err != nil {
		return nil, err
	}
	out := model.Fundamentals{}
	section := doc.Get("fundamentals")
	for _, m := range model.Metrics {
		if v := section.Get(string(m)); v.Type == gjson.Number {
			out[m] = v.Float()
		}
	}
	return out, nil
}

// DiscoverCandidates reads Dir/candidates.json, an array of
// {"code", "name", "price", "diff_rate", "volume"} objects.
func (f *FileProvider) DiscoverCandidates(ctx context.Context, limit int) ([]model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(f.Dir, CandidatesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid json", model.ErrMalformedInput, path)
	}
	var out []model.Candidate
	gjson.ParseBytes(data).ForEach(func(_, c gjson.Result) bool {
		out = append(out, model.Candidate{
			Code:     c.Get("code").String(),
			Name:     c.Get("name").String(),
			Price:    c.Get("price").Float(),
			DiffRate: c.Get("diff_rate").Float(),
			Volume:   c.Get("volume").Int(),
		})
		return limit <= 0 || len(out) < limit
	})
	return out, nil
}
