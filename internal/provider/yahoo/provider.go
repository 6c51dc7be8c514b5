package yahoo

import (
	"context"
	"fmt"
	"time"

	"stockanalyzer/internal/provider"
)

type Config struct {
	Name   string // display name, default: Yahoo Finance
	Suffix string // exchange suffix appended to tickers, default: .NS
}

// Provider turns one year of daily candles into a quote with
// 52-week, 3-month and 1-month high/low bands.
type Provider struct {
	cfg    Config
	client *Client
	now    func() time.Time
}

func New(cfg Config, client *Client) *Provider {
	if cfg.Name == "" { cfg.Name = "Yahoo Finance" }
	if cfg.Suffix == "" { cfg.Suffix = ".NS" }
	return &Provider{cfg: cfg, client: client, now: time.Now}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	ticker := symbol + p.cfg.Suffix
	chart, err := p.client.GetChart(ctx, ticker, Range1y)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	if len(chart.Bars) == 0 {
		return provider.Quote{}, fmt.Errorf("yahoo %s: no history: %w", ticker, provider.ErrNoData)
	}

	price := chart.RegularMarketPrice
	if price == nil || *price <= 0 {
		price = lastClose(chart.Bars)
	}
	if price == nil {
		return provider.Quote{}, fmt.Errorf("yahoo %s: no closing price: %w", ticker, provider.ErrNoData)
	}

	last := chart.Bars[len(chart.Bars)-1].Time
	q := provider.Quote{
		Symbol:     symbol,
		Price:      provider.Float(*price),
		Source:     p.cfg.Name,
		ReceivedAt: p.now().UTC(),
	}
	q.High52W, q.Low52W = band(chart.Bars, time.Time{})
	q.High3M, q.Low3M = band(chart.Bars, last.AddDate(0, -3, 0))
	q.High1M, q.Low1M = band(chart.Bars, last.AddDate(0, -1, 0))
	return q, nil
}

// band returns the highest high and lowest low of bars at or after since.
func band(bars []Bar, since time.Time) (high, low *float64) {
	for _, b := range bars {
		if b.Time.Before(since) { continue }
		if b.High != nil && (high == nil || *b.High > *high) {
			high = provider.Float(*b.High)
		}
		if b.Low != nil && (low == nil || *b.Low < *low) {
			low = provider.Float(*b.Low)
		}
	}
	return high, low
}

func lastClose(bars []Bar) *float64 {
	for i := len(bars) - 1; i >= 0; i-- {
		if c := bars[i].Close; c != nil && *c > 0 {
			return provider.Float(*c)
		}
	}
	return nil
}
