package provider

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"UpriseScanner/internal/model"
)

const (
	DefaultNaverChartURL   = "https://fchart.stock.naver.com/sise.nhn"
	DefaultNaverFinanceURL = "https://finance.naver.com"

	// DefaultMinDiffRate is the minimum daily rise, in percent, for a rising
	// stock to become a candidate.
	DefaultMinDiffRate = 3.0
)

var seoul = mustLoadLocation("Asia/Seoul")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Row headers of the company page analysis table, whitespace removed.
var naverMetricRows = map[string]model.Metric{
	"영업이익":      model.OperatingIncome,
	"부채비율":      model.DebtRatio,
	"유보율":       model.ReserveRatio,
	"PER(배)":    model.PER,
	"PBR(배)":    model.PBR,
	"ROE(지배주주)": model.ROE,
}

// NaverProvider reads KRX data from Naver Finance: chart XML for history,
// the company page for fundamentals and the rising-stocks page for candidates.
type NaverProvider struct {
	ChartURL    string
	FinanceURL  string
	MinDiffRate float64

	web *webClient
}

func NewNaverProvider(cfg HTTPConfig) *NaverProvider {
	return &NaverProvider{
		ChartURL:    DefaultNaverChartURL,
		FinanceURL:  DefaultNaverFinanceURL,
		MinDiffRate: DefaultMinDiffRate,
		web:         newWebClient("naver", cfg),
	}
}

func (n *NaverProvider) Name() string { return "naver" }

type fchartDoc struct {
	Items []struct {
		Data string `xml:"data,attr"`
	} `xml:"chartdata>item"`
}

func (n *NaverProvider) FetchHistory(ctx context.Context, code string, days int) (model.Series, error) {
	body, err := n.web.getRaw(ctx, n.ChartURL, map[string]string{
		"symbol":      code,
		"timeframe":   "day",
		"count":       strconv.Itoa(days),
		"requestType": "0",
	})
	if err != nil {
		return model.Series{}, err
	}
	return parseFChart(code, body)
}

// parseFChart decodes items of the form "YYYYMMDD|open|high|low|close|volume".
// Items with fewer fields are skipped.
func parseFChart(code string, body []byte) (model.Series, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = xmlCharsetReader
	var doc fchartDoc
	if err := dec.Decode(&doc); err != nil {
		return model.Series{}, fmt.Errorf("%w: naver chart for %s: %v", model.ErrMalformedInput, code, err)
	}

	points := make([]model.PricePoint, 0, len(doc.Items))
	for _, item := range doc.Items {
		fields := strings.Split(item.Data, "|")
		if len(fields) < 6 {
			continue
		}
		p, err := parseBar(fields)
		if err != nil {
			return model.Series{}, fmt.Errorf("%w: naver chart for %s: %v", model.ErrMalformedInput, code, err)
		}
		points = append(points, p)
	}
	return model.NewSeries(code, points)
}

func parseBar(fields []string) (model.PricePoint, error) {
	date, err := time.ParseInLocation("20060102", strings.TrimSpace(fields[0]), seoul)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("date %q: %w", fields[0], err)
	}
	var ohlc [4]float64
	for i := range ohlc {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return model.PricePoint{}, fmt.Errorf("price %q: %w", fields[i+1], err)
		}
		ohlc[i] = v
	}
	vol, err := strconv.ParseInt(strings.TrimSpace(fields[5]), 10, 64)
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("volume %q: %w", fields[5], err)
	}
	return model.NewPricePoint(date, ohlc[0], ohlc[1], ohlc[2], ohlc[3], vol)
}

func (n *NaverProvider) FetchFundamentals(ctx context.Context, code string) (model.Fundamentals, error) {
	body, err := n.web.getText(ctx, n.FinanceURL+"/item/main.naver", map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: naver company page for %s: %v", model.ErrMalformedInput, code, err)
	}
	return parseCompanyPage(doc), nil
}

// parseCompanyPage takes the latest reported value of each known row of the
// analysis table plus the industry PER. Rows without a number are omitted.
func parseCompanyPage(doc *goquery.Document) model.Fundamentals {
	f := model.Fundamentals{}
	doc.Find("div.section.cop_analysis tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		if th.Length() == 0 {
			return
		}
		metric, ok := naverMetricRows[compact(th.Text())]
		if !ok {
			return
		}
		if v, ok := latestNumber(row.Find("td")); ok {
			f[metric] = v
		}
	})

	doc.Find(`table[summary="동일업종 PER 정보"] em`).EachWithBreak(func(_ int, em *goquery.Selection) bool {
		if v, ok := parseNumber(em.Text()); ok {
			f[model.IndustryPER] = v
			return false
		}
		return true
	})
	return f
}

// latestNumber scans cells right to left for the first numeric value.
func latestNumber(cells *goquery.Selection) (float64, bool) {
	for i := cells.Length() - 1; i >= 0; i-- {
		if v, ok := parseNumber(cells.Eq(i).Text()); ok {
			return v, true
		}
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" || s == "N/A" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// DiscoverCandidates lists today's rising stocks whose rise is at least
// MinDiffRate percent, in page order, up to limit (zero means no limit).
func (n *NaverProvider) DiscoverCandidates(ctx context.Context, limit int) ([]model.Candidate, error) {
	body, err := n.web.getText(ctx, n.FinanceURL+"/sise/sise_rise.naver", nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: naver rising stocks: %v", model.ErrMalformedInput, err)
	}
	return parseRisingStocks(doc, n.MinDiffRate, limit), nil
}

func parseRisingStocks(doc *goquery.Document, minDiffRate float64, limit int) []model.Candidate {
	var out []model.Candidate
	doc.Find("table.type_2 tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < 10 {
			return true
		}
		link := cols.Eq(1).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		code := href[strings.LastIndex(href, "=")+1:]
		price, okPrice := parseNumber(cols.Eq(2).Text())
		diff, okDiff := parseNumber(strings.NewReplacer("%", "", "+", "", "-", "").Replace(cols.Eq(4).Text()))
		volume, okVol := parseNumber(cols.Eq(6).Text())
		if code == "" || !okPrice || !okDiff || !okVol {
			return true
		}
		if diff < minDiffRate {
			return true
		}
		out = append(out, model.Candidate{
			Code:     code,
			Name:     strings.TrimSpace(link.Text()),
			Price:    price,
			DiffRate: diff,
			Volume:   int64(volume),
		})
		return limit <= 0 || len(out) < limit
	})
	return out
}
