package nse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"stockanalyzer/internal/httpx"
	"stockanalyzer/internal/provider"
)

// Config controls the NSE provider behavior.
type Config struct {
	Name    string
	BaseURL string
	// SessionTTL is how long the cookies from the home page warm-up are trusted.
	SessionTTL time.Duration
}

// Provider reads the exchange's own quote API. The API refuses requests that
// do not carry the cookies handed out by the home page, so the provider
// warms a session first and keeps it for SessionTTL.
type Provider struct {
	cfg    Config
	client *httpx.Client

	mu        sync.Mutex
	warmUntil time.Time

	// coalesce concurrent warm-ups
	sf singleflight.Group
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "NSE Official" }
	if cfg.BaseURL == "" { cfg.BaseURL = "https://www.nseindia.com" }
	if cfg.SessionTTL <= 0 { cfg.SessionTTL = 5 * time.Minute }
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: hc.WithCookieJar()}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	if err := p.warm(ctx); err != nil {
		return provider.Quote{}, fmt.Errorf("nse warm-up: %w", err)
	}
	body, err := p.quote(ctx, symbol)
	if isAuthError(err) {
		// Session cookies expired early; warm once more and retry.
		p.expire()
		if err := p.warm(ctx); err != nil {
			return provider.Quote{}, fmt.Errorf("nse warm-up: %w", err)
		}
		body, err = p.quote(ctx, symbol)
	}
	if err != nil {
		return provider.Quote{}, fmt.Errorf("nse %s: %w", symbol, err)
	}

	pi := body.PriceInfo
	if pi.LastPrice == nil || *pi.LastPrice <= 0 {
		return provider.Quote{}, fmt.Errorf("nse %s: %w", symbol, provider.ErrNoData)
	}
	q := provider.Quote{
		Symbol:     symbol,
		Price:      provider.Float(*pi.LastPrice),
		Source:     p.cfg.Name,
		ReceivedAt: time.Now().UTC(),
	}
	if w := pi.WeekHighLow; w != nil {
		q.High52W = positive(w.Max)
		q.Low52W = positive(w.Min)
	}
	return q, nil
}

func (p *Provider) quote(ctx context.Context, symbol string) (*quoteResponse, error) {
	u := fmt.Sprintf("%s/api/quote-equity?symbol=%s", p.cfg.BaseURL, url.QueryEscape(symbol))
	resp, err := p.client.Get(ctx, u, map[string]string{
		"Accept":  "application/json",
		"Referer": p.cfg.BaseURL + "/get-quotes/equity?symbol=" + url.QueryEscape(symbol),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if body.Info.Symbol == "" && body.PriceInfo.LastPrice == nil {
		return nil, provider.ErrNotFound
	}
	return &body, nil
}

func (p *Provider) warm(ctx context.Context) error {
	p.mu.Lock()
	fresh := time.Now().Before(p.warmUntil)
	p.mu.Unlock()
	if fresh {
		return nil
	}
	_, err, _ := p.sf.Do("warm", func() (any, error) {
		resp, err := p.client.Get(ctx, p.cfg.BaseURL+"/", map[string]string{"Accept": "text/html"})
		if err != nil {
			return nil, err
		}
		resp.Body.Close()
		p.mu.Lock()
		p.warmUntil = time.Now().Add(p.cfg.SessionTTL)
		p.mu.Unlock()
		return nil, nil
	})
	return err
}

func (p *Provider) expire() {
	p.mu.Lock()
	p.warmUntil = time.Time{}
	p.mu.Unlock()
}

func isAuthError(err error) bool {
	var se *httpx.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return provider.Float(*v)
}

type quoteResponse struct {
	Info struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"companyName"`
	} `json:"info"`
	PriceInfo struct {
		LastPrice   *float64 `json:"lastPrice"`
		WeekHighLow *struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"weekHighLow"`
	} `json:"priceInfo"`
}
