package cache

import (
	"context"
	"sync"
	"time"

	"stockanalyzer/internal/provider"
)

// entry stores a cached quote for a single symbol with expiry.
type entry struct {
	expiresAt time.Time
	quote     provider.Quote
}

// Provider caches usable quotes per symbol for a TTL.
// Failures and unusable quotes are never cached, so a later attempt
// for the same symbol always reaches the underlying provider.
type Provider struct {
	P        provider.Provider
	TTL      time.Duration
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry // key: symbol
	now   func() time.Time
}

func (c *Provider) Name() string { return c.P.Name() }

// Fetch returns the cached quote when still valid, otherwise asks P.
func (c *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	if c.TTL <= 0 {
		return c.P.Fetch(ctx, symbol)
	}

	now := c.clock()
	c.mu.RLock()
	e, ok := c.items[symbol]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.quote, nil
	}

	q, err := c.P.Fetch(ctx, symbol)
	if err != nil || !q.Usable() {
		return q, err
	}

	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[symbol] = entry{expiresAt: now.Add(c.TTL), quote: q}
	// best-effort cap cache size: expired first, then arbitrary
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		for k, v := range c.items {
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems { break }
			if k == symbol { continue }
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
	return q, nil
}

// Len reports the number of cached symbols, expired or not.
func (c *Provider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Provider) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
