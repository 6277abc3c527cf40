// Package kyo fetches and decodes the LOTO6 draw history published by KYO's LOTO6.
//
// The feed is a single Shift-JIS encoded CSV document that always contains the
// full history, oldest draw first, behind a header row.
package kyo

import (
	"context"
	"fmt"
	"time"

	"loto6-backend/internal/components/assert"
	"loto6-backend/internal/components/telemetry"
	"loto6-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

const (
	DefaultUrl       = "https://loto6.thekyo.jp/data/loto6.csv"
	DefaultUserAgent = "NekoLoto6-Updater/1.0"
	DefaultTimeout   = 30 * time.Second
)

const report_client_fetch = "client.fetch"

var tracer = otel.Tracer("loto6.lib.scrapers.kyo")

// StatusError is returned by Fetch when the feed answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("kyo: unexpected status %s", e.Status)
}

type ClientOptions struct {
	// Url defaults to DefaultUrl.
	Url string
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// Timeout bounds a single request, defaults to DefaultTimeout.
	Timeout time.Duration
	// Output receives request/response dumps when debug logging is enabled, it can be nil.
	Output restyutil.InstrumentOutput
}

// Client downloads the raw feed, it never retries by itself.
type Client struct {
	url  string
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) Client {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("kyo", tel)

	if opts.Url == "" {
		opts.Url = DefaultUrl
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	assert.NotEmptyStr(opts.Url)
	assert.Positive(opts.Timeout, "timeout")

	httpClient := resty.New()
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetRetryCount(0)

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.Output)

	return Client{
		url:  opts.Url,
		http: httpClient,
		tel:  tel,
	}
}

// Fetch downloads the feed body as is. Any error it returns is a transport
// level failure: connection, timeout or a non-2xx status.
func (c Client) Fetch(ctx context.Context) ([]byte, error) {
	c.tel.ReportDebug("fetch", c.url)

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		c.tel.ReportWarning(
			report_client_fetch,
			fmt.Errorf("request: %w", err),
			c.url,
		)
		return nil, fmt.Errorf("kyo: fetch %s: %w", c.url, err)
	}
	if !res.IsSuccess() {
		err := &StatusError{StatusCode: res.StatusCode(), Status: res.Status()}
		c.tel.ReportWarning(report_client_fetch, err, c.url)
		return nil, err
	}

	return res.Body(), nil
}
