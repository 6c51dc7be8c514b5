package provider

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoData is returned when a provider answered but carried no price.
	ErrNoData = errors.New("no price data")
	// ErrNotFound is returned when the provider does not know the symbol.
	ErrNotFound = errors.New("symbol not found")
)

// Quote is the normalized shape returned by all providers.
// Absent fields are nil; a provider fills only what it actually observed.
type Quote struct {
	Symbol     string    `json:"symbol"`
	Price      *float64  `json:"price,omitempty"`
	High52W    *float64  `json:"high_52w,omitempty"`
	Low52W     *float64  `json:"low_52w,omitempty"`
	High3M     *float64  `json:"high_3m,omitempty"`
	Low3M      *float64  `json:"low_3m,omitempty"`
	High1M     *float64  `json:"high_1m,omitempty"`
	Low1M      *float64  `json:"low_1m,omitempty"`
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
}

// Usable reports whether the quote carries a positive current price.
func (q Quote) Usable() bool {
	return q.Price != nil && *q.Price > 0
}

// CurrentPrice returns the price or 0 when absent.
func (q Quote) CurrentPrice() float64 {
	if q.Price == nil {
		return 0
	}
	return *q.Price
}

// HasRanges reports whether every range bound was supplied.
func (q Quote) HasRanges() bool {
	return q.High52W != nil && q.Low52W != nil &&
		q.High3M != nil && q.Low3M != nil &&
		q.High1M != nil && q.Low1M != nil
}

// Float returns a pointer to v, for filling optional Quote fields.
func Float(v float64) *float64 { return &v }

// Provider fetches one symbol's quote from a single upstream source.
//
//go:generate mockgen -package=mock -destination=mock/provider.go -source=provider.go Provider
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (Quote, error)
}
