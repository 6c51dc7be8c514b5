// Package app wires configured providers, the resolver and the runner
// shared by the command line tools and the HTTP server.
package app

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"stockanalyzer/internal/analysis"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/httpx"
	"stockanalyzer/internal/metrics"
	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/provider/cache"
	"stockanalyzer/internal/provider/googlefinance"
	"stockanalyzer/internal/provider/nse"
	"stockanalyzer/internal/provider/ratelimit"
	"stockanalyzer/internal/provider/yahoo"
	"stockanalyzer/internal/resolve"
)

// Providers is the resolution chain. Disabled sources are nil.
type Providers struct {
	Primary   provider.Provider
	Exchange  provider.Provider
	Secondary provider.Provider
}

// All returns the enabled providers in resolution order.
func (p Providers) All() []provider.Provider {
	var out []provider.Provider
	for _, x := range []provider.Provider{p.Primary, p.Exchange, p.Secondary} {
		if x != nil {
			out = append(out, x)
		}
	}
	return out
}

// NewProviders builds every enabled source behind its rate limit and cache.
func NewProviders(cfg config.Config, log zerolog.Logger) Providers {
	var ps Providers
	if s := cfg.Yahoo; s.Enabled {
		hc := httpx.New(s.Timeout())
		client := yahoo.NewClient(
			yahoo.WithBaseURL(s.Endpoint),
			yahoo.WithHTTPClient(hc.HTTP),
			yahoo.WithHeader(http.Header{"User-Agent": []string{hc.UserAgent}}),
		)
		ps.Primary = decorate(yahoo.New(yahoo.Config{Suffix: s.Suffix}, client), s)
	}
	if s := cfg.NSE; s.Enabled {
		p := nse.New(nse.Config{BaseURL: s.Endpoint, SessionTTL: sessionTTL(s)}, httpx.New(s.Timeout()))
		ps.Exchange = decorate(p, s)
	}
	if s := cfg.Google; s.Enabled {
		p := googlefinance.New(googlefinance.Config{BaseURL: s.Endpoint, Exchange: s.Exchange}, httpx.New(s.Timeout()))
		ps.Secondary = decorate(p, s)
	}
	for _, p := range ps.All() {
		log.Debug().Str("provider", p.Name()).Msg("provider enabled")
	}
	return ps
}

// NewRunner builds a runner over the configured chain.
func NewRunner(cfg config.Config, ps Providers, log zerolog.Logger) *analysis.Runner {
	return &analysis.Runner{
		Resolver:  resolve.New(ps.Primary, ps.Exchange, ps.Secondary, log),
		Estimator: metrics.NewEstimator(cfg.Estimate),
		Pacer:     analysis.Every(cfg.SymbolDelay()),
		Log:       log,
	}
}

func decorate(p provider.Provider, s config.Source) provider.Provider {
	p = ratelimit.Wrap(p, s.MaxRequestsPerMinute, s.Burst, s.MinInterval())
	if s.CacheTTLSeconds > 0 {
		p = &cache.Provider{P: p, TTL: s.CacheTTL(), MaxItems: s.CacheMaxItems}
	}
	return p
}

func sessionTTL(s config.Source) time.Duration {
	return time.Duration(s.SessionTTLSec) * time.Second
}
