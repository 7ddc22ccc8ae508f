package provider

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/tidwall/gjson"

	"UpriseScanner/internal/model"
)

const DefaultYahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

var krxCode = regexp.MustCompile(`^\d{6}$`)

// YahooProvider reads daily history from the Yahoo Finance chart API.
// Yahoo exposes no fundamentals for KRX listings, so every metric is unknown.
type YahooProvider struct {
	ChartURL string
	// Suffix is appended to six-digit KRX codes, ".KS" for KOSPI and ".KQ"
	// for KOSDAQ.
	Suffix string

	web *webClient
}

func NewYahooProvider(cfg HTTPConfig) *YahooProvider {
	return &YahooProvider{
		ChartURL: DefaultYahooChartURL,
		Suffix:   ".KS",
		web:      newWebClient("yahoo", cfg),
	}
}

func (y *YahooProvider) Name() string { return "yahoo" }

func (y *YahooProvider) ticker(code string) string {
	if krxCode.MatchString(code) {
		return code + y.Suffix
	}
	return code
}

// yahooRange picks the smallest chart range covering days trading days.
func yahooRange(days int) string {
	switch {
	case days <= 20:
		return "1mo"
	case days <= 60:
		return "3mo"
	case days <= 120:
		return "6mo"
	case days <= 250:
		return "1y"
	case days <= 500:
		return "2y"
	default:
		return "5y"
	}
}

func (y *YahooProvider) FetchHistory(ctx context.Context, code string, days int) (model.Series, error) {
	endpoint := fmt.Sprintf("%s/%s", y.ChartURL, url.PathEscape(y.ticker(code)))
	body, err := y.web.getText(ctx, endpoint, map[string]string{
		"interval": "1d",
		"range":    yahooRange(days),
	})
	if err != nil {
		return model.Series{}, err
	}
	s, err := parseYahooChart(code, body)
	if err != nil {
		return model.Series{}, err
	}
	if days > 0 {
		s = s.Tail(days)
	}
	return s, nil
}

// parseYahooChart skips bars with a null close, which Yahoo emits for
// holidays and halted sessions.
func parseYahooChart(code string, body []byte) (model.Series, error) {
	if !gjson.ValidBytes(body) {
		return model.Series{}, fmt.Errorf("%w: yahoo chart for %s: invalid json", model.ErrMalformedInput, code)
	}
	chart := gjson.GetBytes(body, "chart")
	if desc := chart.Get("error.description"); desc.Exists() {
		return model.Series{}, fmt.Errorf("%w: yahoo chart for %s: %s", model.ErrDataUnavailable, code, desc.String())
	}
	result := chart.Get("result.0")
	if !result.Exists() {
		return model.NewSeries(code, nil)
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	if len(opens) != len(timestamps) || len(highs) != len(timestamps) || len(lows) != len(timestamps) ||
		len(closes) != len(timestamps) || len(volumes) != len(timestamps) {
		return model.Series{}, fmt.Errorf("%w: yahoo chart for %s: column lengths differ", model.ErrMalformedInput, code)
	}

	points := make([]model.PricePoint, 0, len(timestamps))
	for i, ts := range timestamps {
		if closes[i].Type == gjson.Null {
			continue
		}
		t := time.Unix(ts.Int(), 0).In(seoul)
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, seoul)
		p, err := barFromJSON(date, opens[i], highs[i], lows[i], closes[i], volumes[i])
		if err != nil {
			return model.Series{}, fmt.Errorf("yahoo chart for %s: %w", code, err)
		}
		points = append(points, p)
	}
	return model.NewSeries(code, points)
}

func (y *YahooProvider) FetchFundamentals(context.Context, string) (model.Fundamentals, error) {
	return model.Fundamentals{}, nil
}
