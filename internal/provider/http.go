package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5.0
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// HTTPConfig configures the shared HTTP client of the web providers.
type HTTPConfig struct {
	Timeout time.Duration
	// RateLimit is the request budget per second; zero or less disables pacing.
	RateLimit float64
	Proxy     string
	UserAgent string
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

type webClient struct {
	name    string
	client  *resty.Client
	limiter *rate.Limiter
}

func newWebClient(name string, cfg HTTPConfig) *webClient {
	cfg = cfg.withDefaults()
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &webClient{name: name, client: client, limiter: limiter}
}

// getText fetches url and returns the body as UTF-8.
func (w *webClient) getText(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	resp, err := w.get(ctx, url, query)
	if err != nil {
		return nil, err
	}
	body, err := toUTF8(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", w.name, url, err)
	}
	return body, nil
}

// getRaw fetches url and returns the undecoded body.
func (w *webClient) getRaw(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	resp, err := w.get(ctx, url, query)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (w *webClient) get(ctx context.Context, url string, query map[string]string) (*resty.Response, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%s: get %s: %w", w.name, url, err)
	}
	if resp.StatusCode() != 200 {
		return nil, &StatusError{Provider: w.name, URL: url, Code: resp.StatusCode(), Body: resp.String()}
	}
	return resp, nil
}

// toUTF8 transcodes EUC-KR bodies, either declared in the content type or
// detected by invalid UTF-8.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	ct := strings.ToLower(contentType)
	declared := strings.Contains(ct, "euc-kr") || strings.Contains(ct, "ks_c_5601")
	if !declared && utf8.Valid(body) {
		return body, nil
	}
	return io.ReadAll(transform.NewReader(bytes.NewReader(body), korean.EUCKR.NewDecoder()))
}

// xmlCharsetReader lets encoding/xml read documents declared as EUC-KR.
func xmlCharsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "euc-kr", "ks_c_5601-1987", "cp949":
		return transform.NewReader(input, korean.EUCKR.NewDecoder()), nil
	case "utf-8", "":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", charset)
}
