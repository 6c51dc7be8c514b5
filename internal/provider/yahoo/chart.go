package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockanalyzer/internal/provider"
)

// Range is a chart lookback accepted by the API.
type Range string

const (
	Range1mo Range = "1mo"
	Range3mo Range = "3mo"
	Range1y  Range = "1y"
)

// Bar is one daily candle. Yahoo reports nulls for halted sessions,
// so the price fields are optional.
type Bar struct {
	Time  time.Time
	High  *float64
	Low   *float64
	Close *float64
}

// Chart is the decoded subset of a chart response.
type Chart struct {
	Symbol             string
	Currency           string
	RegularMarketPrice *float64
	Bars               []Bar
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		Currency           string   `json:"currency"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			High  []*float64 `json:"high"`
			Low   []*float64 `json:"low"`
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// GetChart retrieves daily candles for ticker over rng.
func (c *Client) GetChart(ctx context.Context, ticker string, rng Range) (*Chart, error) {
	query := maps.Clone(c.query)
	query.Set("range", string(rng))
	query.Set("interval", "1d")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Unknown tickers come back as 404 with a chart.error body.
		return nil, fmt.Errorf("%s: %w", ticker, provider.ErrNotFound)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")
	default:
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fmt.Errorf("unexpected status code: %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}

	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}
	if e := body.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %s: %w", ticker, e.Description, provider.ErrNotFound)
		}
		return nil, fmt.Errorf("chart error %s: %s", e.Code, e.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: empty chart result: %w", ticker, provider.ErrNoData)
	}
	return decodeChart(body.Chart.Result[0])
}

func decodeChart(r chartResult) (*Chart, error) {
	chart := &Chart{
		Symbol:             r.Meta.Symbol,
		Currency:           r.Meta.Currency,
		RegularMarketPrice: r.Meta.RegularMarketPrice,
	}
	if len(r.Timestamp) == 0 {
		return chart, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, errors.New("decoding chart: missing quote indicators")
	}
	q := r.Indicators.Quote[0]
	chart.Bars = make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		chart.Bars = append(chart.Bars, Bar{
			Time:  time.Unix(ts, 0).UTC(),
			High:  at(q.High, i),
			Low:   at(q.Low, i),
			Close: at(q.Close, i),
		})
	}
	return chart, nil
}

func at(s []*float64, i int) *float64 {
	if i >= len(s) {
		return nil
	}
	return s[i]
}
