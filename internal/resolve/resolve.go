// Package resolve picks one usable quote per symbol from an ordered chain of
// providers and degrades to a placeholder when every provider fails.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stockanalyzer/internal/provider"
)

// UnavailableSource labels the placeholder quote returned when no provider answered.
const UnavailableSource = "Unavailable"

var errUnusable = errors.New("unusable quote")

// Stage is one attempt in the chain. When Provider answers with a usable
// quote and Then is set, Then is tried once more and its usable result wins.
type Stage struct {
	Provider provider.Provider
	Then     provider.Provider
}

// Resolver walks its stages in order and stops at the first usable quote.
type Resolver struct {
	Stages []Stage
	Log    zerolog.Logger
	now    func() time.Time
}

// New builds the standard chain: primary, then exchange, then secondary
// followed by a second try of primary. Nil providers are skipped.
func New(primary, exchange, secondary provider.Provider, log zerolog.Logger) *Resolver {
	r := &Resolver{Log: log}
	if primary != nil {
		r.Stages = append(r.Stages, Stage{Provider: primary})
	}
	if exchange != nil {
		r.Stages = append(r.Stages, Stage{Provider: exchange})
	}
	if secondary != nil {
		r.Stages = append(r.Stages, Stage{Provider: secondary, Then: primary})
	}
	return r
}

// Resolve never fails: provider errors are logged and the next stage runs.
func (r *Resolver) Resolve(ctx context.Context, symbol string) provider.Quote {
	for _, st := range r.Stages {
		q, ok := r.attempt(ctx, st.Provider, symbol)
		if !ok {
			continue
		}
		if st.Then != nil {
			if again, ok := r.attempt(ctx, st.Then, symbol); ok {
				return again
			}
		}
		return q
	}
	r.Log.Warn().Str("symbol", symbol).Msg("all providers failed")
	return Placeholder(symbol, r.clock())
}

// Placeholder is the zero-price quote for a symbol no provider could serve.
func Placeholder(symbol string, at time.Time) provider.Quote {
	return provider.Quote{
		Symbol:     symbol,
		Price:      provider.Float(0),
		Source:     UnavailableSource,
		ReceivedAt: at,
	}
}

func (r *Resolver) attempt(ctx context.Context, p provider.Provider, symbol string) (q provider.Quote, ok bool) {
	start := r.clock()
	q, err := safeFetch(ctx, p, symbol)
	if err == nil && !q.Usable() {
		err = errUnusable
	}
	ev := r.Log.Debug()
	if err != nil {
		ev = r.Log.Warn().Err(err)
	}
	ev.Str("symbol", symbol).
		Str("provider", p.Name()).
		Dur("took", r.clock().Sub(start)).
		Msg("fetch")
	if err != nil {
		return provider.Quote{}, false
	}
	if q.Source == "" {
		q.Source = p.Name()
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	if q.ReceivedAt.IsZero() {
		q.ReceivedAt = r.clock()
	}
	return q, true
}

func safeFetch(ctx context.Context, p provider.Provider, symbol string) (q provider.Quote, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), v)
		}
	}()
	return p.Fetch(ctx, symbol)
}

func (r *Resolver) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
