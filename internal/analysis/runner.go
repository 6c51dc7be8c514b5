// Package analysis runs the per-symbol pipeline over a watch list.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"stockanalyzer/internal/metrics"
	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/report"
	"stockanalyzer/internal/resolve"
	"stockanalyzer/internal/symbols"
)

// Resolver yields one quote per symbol and never fails.
type Resolver interface {
	Resolve(ctx context.Context, symbol string) provider.Quote
}

// Pacer spaces out consecutive symbols.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoPause never waits.
type NoPause struct{}

func (NoPause) Wait(context.Context) error { return nil }

// Every returns a pacer whose Wait calls are at least d apart. The bucket
// starts empty, so the first Wait also blocks for d.
func Every(d time.Duration) Pacer {
	if d <= 0 {
		return NoPause{}
	}
	l := rate.NewLimiter(rate.Every(d), 1)
	l.Allow()
	return l
}

// Result is one completed run.
type Result struct {
	ID          string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Records     []report.Record `json:"records"`
}

// Runner resolves, estimates and scores symbols strictly one at a time.
type Runner struct {
	Resolver  Resolver
	Estimator metrics.Estimator
	Pacer     Pacer
	Log       zerolog.Logger
	Now       func() time.Time
}

// Run produces exactly one record per input symbol, in input order.
func (r *Runner) Run(ctx context.Context, syms []symbols.Symbol) Result {
	res := Result{
		ID:          uuid.NewString(),
		GeneratedAt: r.now(),
		Records:     make([]report.Record, 0, len(syms)),
	}
	log := r.Log.With().Str("run_id", res.ID).Logger()
	log.Info().Int("symbols", len(syms)).Msg("analysis started")

	pacer := r.Pacer
	if pacer == nil {
		pacer = NoPause{}
	}
	for i, s := range syms {
		if i > 0 {
			if err := pacer.Wait(ctx); err != nil {
				log.Debug().Err(err).Msg("pacer")
			}
		}
		rec := r.analyze(ctx, s, log)
		log.Info().
			Str("symbol", rec.Symbol).
			Str("source", rec.DataSource).
			Float64("price", rec.CurrentPrice).
			Float64("current_vs_all", rec.Aggregate).
			Msg("analyzed")
		res.Records = append(res.Records, rec)
	}
	return res
}

func (r *Runner) analyze(ctx context.Context, s symbols.Symbol, log zerolog.Logger) (rec report.Record) {
	defer func() {
		if v := recover(); v != nil {
			log.Error().Str("symbol", s.Ticker).Interface("panic", v).Msg("analysis panicked")
			rec = r.build(s, resolve.Placeholder(s.Ticker, r.now()))
		}
	}()
	return r.build(s, r.Resolver.Resolve(ctx, s.Ticker))
}

func (r *Runner) build(s symbols.Symbol, q provider.Quote) report.Record {
	ranges := r.Estimator.Fill(q).Rounded()
	price := metrics.Round(q.CurrentPrice(), 2)
	return report.Build(s, q, ranges, metrics.Compute(price, ranges))
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
