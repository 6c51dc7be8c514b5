package yahoo

import (
	"net/http"
	"net/url"

	"stockanalyzer/internal/httpx"
)

// chartHost serves /v8/finance/chart without a crumb or cookie.
const chartHost = "https://query1.finance.yahoo.com"

// HTTPClient is the subset of *http.Client the chart client needs.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Yahoo Finance v8 chart endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	// Yahoo answers 429 or an empty result to non-browser agents, so every
	// chart call carries a browser User-Agent and a JSON Accept.
	header http.Header
	// Merged under range and interval on every chart call.
	query url.Values
}

// ClientOption tweaks a Client built by NewClient.
type ClientOption func(*Client)

// WithBaseURL points the client at another chart host, e.g. query2 or a test server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient swaps the transport used for chart calls.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeader replaces the named headers, so a configured User-Agent wins
// over the browser default.
func WithHeader(h http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range h {
			c.header.Del(key)
			for _, v := range values {
				if v != "" {
					c.header.Add(key, v)
				}
			}
		}
		if c.header.Get("User-Agent") == "" {
			c.header.Set("User-Agent", httpx.BrowserUserAgent)
		}
	}
}

// NewClient returns a chart client for query1.finance.yahoo.com that asks for
// regular-session candles only.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		baseURL:    chartHost,
		httpClient: http.DefaultClient,
		header: http.Header{
			"User-Agent": {httpx.BrowserUserAgent},
			"Accept":     {"application/json"},
		},
		query: url.Values{"includePrePost": {"false"}},
	}
	for _, option := range options {
		option(c)
	}
	return c
}
