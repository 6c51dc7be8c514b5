package googlefinance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stockanalyzer/internal/httpx"
	"stockanalyzer/internal/provider"
)

// priceSelector matches the headline price on the quote page.
const priceSelector = "div.YMlKec.fxKbKc"

type Config struct {
	Name     string
	BaseURL  string
	Exchange string // exchange code in the quote path, default: NSE
}

// Provider scrapes the Google Finance quote page. The page only exposes a
// current price reliably, so quotes from here never carry range bounds.
type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" { cfg.Name = "Google Finance" }
	if cfg.BaseURL == "" { cfg.BaseURL = "https://www.google.com/finance" }
	if cfg.Exchange == "" { cfg.Exchange = "NSE" }
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	u := fmt.Sprintf("%s/quote/%s:%s", p.cfg.BaseURL, url.PathEscape(symbol), p.cfg.Exchange)
	resp, err := p.client.Get(ctx, u, map[string]string{"Accept": "text/html"})
	if err != nil {
		return provider.Quote{}, fmt.Errorf("google finance %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("google finance %s: parse html: %w", symbol, err)
	}

	sel := doc.Find(priceSelector).First()
	if sel.Length() == 0 {
		return provider.Quote{}, fmt.Errorf("google finance %s: %w", symbol, provider.ErrNotFound)
	}
	price, ok := parsePrice(sel.Text())
	if !ok || price <= 0 {
		return provider.Quote{}, fmt.Errorf("google finance %s: price %q: %w", symbol, strings.TrimSpace(sel.Text()), provider.ErrNoData)
	}
	return provider.Quote{
		Symbol:     symbol,
		Price:      provider.Float(price),
		Source:     p.cfg.Name,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// parsePrice reads a displayed amount such as "₹2,500.55".
func parsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
