package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"stockanalyzer/internal/provider"
)

// MinInterval wraps a provider and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	P        provider.Provider
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return provider.Quote{}, ctx.Err()
			case <-t.C:
			}
		}
	}
	q, err := m.P.Fetch(ctx, symbol)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return q, err
}

// Limited gates calls through a token bucket.
type Limited struct {
	P provider.Provider
	L *rate.Limiter
}

// PerMinute builds a limiter allowing rpm requests per minute with burst.
func PerMinute(rpm, burst int) *rate.Limiter {
	if burst <= 0 { burst = 1 }
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

func (l *Limited) Name() string { return l.P.Name() }

func (l *Limited) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	if l.L != nil {
		if err := l.L.Wait(ctx); err != nil {
			return provider.Quote{}, err
		}
	}
	return l.P.Fetch(ctx, symbol)
}

// Wrap prefers a token bucket when rpm is set, otherwise a minimum interval
// when one is configured. With neither, p is returned unchanged.
func Wrap(p provider.Provider, rpm, burst int, minInterval time.Duration) provider.Provider {
	if rpm > 0 {
		return &Limited{P: p, L: PerMinute(rpm, burst)}
	}
	if minInterval > 0 {
		return &MinInterval{P: p, Interval: minInterval}
	}
	return p
}
