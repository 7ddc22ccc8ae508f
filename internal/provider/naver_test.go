package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"UpriseScanner/internal/model"
)

const chartXML = `<?xml version="1.0" encoding="UTF-8" ?>
<protocol>
<chartdata symbol="005930" name="Samsung" count="3" timeframe="day" precision="0" origintime="19900103">
<item data="20240102|78200|79800|78200|79600|17142847" />
<item data="20240103|78500|78800|77000|77000|21753644" />
<item data="broken" />
<item data="20240104|76100|77300|76100|76600|15324439" />
</chartdata>
</protocol>`

const companyHTML = `<html><body>
<div class="section cop_analysis"><table>
<tr><th>매출액</th><td>100</td></tr>
<tr><th>영업이익</th><td>1,200</td><td>1,500</td><td>-</td></tr>
<tr><th>영업이익률</th><td>-3.5</td></tr>
<tr><th>부채비율</th><td>35.2</td><td></td></tr>
<tr><th>유보율</th><td>N/A</td></tr>
<tr><th><strong>PER(배)</strong></th><td>12.1</td><td>9.8</td></tr>
<tr><th>PBR(배)</th><td>1.1</td></tr>
<tr><th>ROE(지배주주)</th><td>8.0</td></tr>
</table></div>
<table summary="동일업종 PER 정보"><tr><td><em>N/A</em><em>14.53</em></td></tr></table>
</body></html>`

const risingHTML = `<html><body><table class="type_2">
<tr><th>N</th></tr>
<tr><td>1</td><td><a href="/item/main.naver?code=005930">삼성전자</a></td><td>79,600</td><td>+1,000</td><td>+5.12%</td><td>0</td><td>1,234,567</td><td>0</td><td>0</td><td>0</td><td>0</td></tr>
<tr><td>2</td><td><a href="/item/main.naver?code=000660">SK하이닉스</a></td><td>140,000</td><td>+2,000</td><td>+1.50%</td><td>0</td><td>500,000</td><td>0</td><td>0</td><td>0</td><td>0</td></tr>
<tr><td>3</td><td><a href="/item/main.naver?code=035720">카카오</a></td><td>50,000</td><td>+2,000</td><td>+3.00%</td><td>0</td><td>900,000</td><td>0</td><td>0</td><td>0</td><td>0</td></tr>
<tr><td colspan="11"></td></tr>
</table></body></html>`

func naverServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sise.nhn", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "005930", r.URL.Query().Get("symbol"))
		assert.Equal(t, "day", r.URL.Query().Get("timeframe"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(chartXML))
	})
	mux.HandleFunc("/item/main.naver", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(companyHTML))
	})
	mux.HandleFunc("/sise/sise_rise.naver", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		body, err := korean.EUCKR.NewEncoder().Bytes([]byte(risingHTML))
		require.NoError(t, err)
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestNaver(srv *httptest.Server) *NaverProvider {
	n := NewNaverProvider(HTTPConfig{})
	n.ChartURL = srv.URL + "/sise.nhn"
	n.FinanceURL = srv.URL
	return n
}

func TestNaverFetchHistory(t *testing.T) {
	n := newTestNaver(naverServer(t))
	s, err := n.FetchHistory(context.Background(), "005930", 3)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "005930", s.Code)
	assert.Equal(t, []float64{79600, 77000, 76600}, s.Closes())
	last, _ := s.Last()
	assert.Equal(t, int64(15324439), last.Volume)
	assert.Equal(t, "2024-01-04", last.Date.Format(model.DateLayout))
}

func TestParseFChartRejectsBadNumbers(t *testing.T) {
	for _, data := range []string{
		"20240102|x|1|1|1|1",
		"20240102|NaN|1|1|1|1",
		"20240102|1|Inf|1|1|1",
		"20240102|1|1|-Inf|1|1",
		"20240102|1|1|1|0|1",
	} {
		t.Run(data, func(t *testing.T) {
			body := []byte(`<protocol><chartdata><item data="` + data + `"/></chartdata></protocol>`)
			var err error
			require.NotPanics(t, func() { _, err = parseFChart("X", body) })
			assert.True(t, errors.Is(err, model.ErrMalformedInput), "got %v", err)
		})
	}
}

func TestParseFChartEUCKR(t *testing.T) {
	doc := `<?xml version="1.0" encoding="EUC-KR" ?><protocol><chartdata name="삼성전자"><item data="20240102|1|2|1|2|10"/></chartdata></protocol>`
	body, err := korean.EUCKR.NewEncoder().Bytes([]byte(doc))
	require.NoError(t, err)
	s, err := parseFChart("005930", body)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestParseFChartOutOfOrder(t *testing.T) {
	body := []byte(`<protocol><chartdata>
<item data="20240103|1|2|1|2|10"/><item data="20240102|1|2|1|2|10"/>
</chartdata></protocol>`)
	_, err := parseFChart("X", body)
	assert.True(t, errors.Is(err, model.ErrMalformedInput))
}

func TestNaverFetchFundamentals(t *testing.T) {
	n := newTestNaver(naverServer(t))
	f, err := n.FetchFundamentals(context.Background(), "005930")
	require.NoError(t, err)

	want := model.Fundamentals{
		model.OperatingIncome: 1500,
		model.DebtRatio:       35.2,
		model.PER:             9.8,
		model.PBR:             1.1,
		model.ROE:             8.0,
		model.IndustryPER:     14.53,
	}
	assert.Equal(t, want, f)
	_, ok := f.Get(model.ReserveRatio)
	assert.False(t, ok, "N/A cells leave the metric unknown")
}

func TestNaverDiscoverCandidates(t *testing.T) {
	n := newTestNaver(naverServer(t))
	got, err := n.DiscoverCandidates(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Candidate{Code: "005930", Name: "삼성전자", Price: 79600, DiffRate: 5.12, Volume: 1234567}, got[0])
	assert.Equal(t, "035720", got[1].Code)

	got, err = n.DiscoverCandidates(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNaverStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNaverProvider(HTTPConfig{})
	n.ChartURL = srv.URL
	_, err := n.FetchHistory(context.Background(), "005930", 10)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
}
