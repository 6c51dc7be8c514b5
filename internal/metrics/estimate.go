package metrics

import (
	"stockanalyzer/internal/provider"
)

// Factors scale the current price into a substitute bound when a provider
// left that bound out.
type Factors struct {
	High52W float64 `json:"high_52w" toml:"high_52w" validate:"gt=0"`
	Low52W  float64 `json:"low_52w" toml:"low_52w" validate:"gt=0"`
	High3M  float64 `json:"high_3m" toml:"high_3m" validate:"gt=0"`
	Low3M   float64 `json:"low_3m" toml:"low_3m" validate:"gt=0"`
	High1M  float64 `json:"high_1m" toml:"high_1m" validate:"gt=0"`
	Low1M   float64 `json:"low_1m" toml:"low_1m" validate:"gt=0"`
}

// DefaultFactors is a symmetric band that narrows with the window.
var DefaultFactors = Factors{
	High52W: 1.20, Low52W: 0.80,
	High3M: 1.10, Low3M: 0.90,
	High1M: 1.05, Low1M: 0.95,
}

// Ranges is a complete set of band bounds.
type Ranges struct {
	High52W, Low52W float64
	High3M, Low3M   float64
	High1M, Low1M   float64
}

// Band returns the (low, high) pair for w.
func (r Ranges) Band(w Window) (low, high float64) {
	switch w {
	case Week52:
		return r.Low52W, r.High52W
	case Month3:
		return r.Low3M, r.High3M
	default:
		return r.Low1M, r.High1M
	}
}

// Rounded returns r with every bound rounded to two decimals.
func (r Ranges) Rounded() Ranges {
	return Ranges{
		High52W: Round(r.High52W, 2), Low52W: Round(r.Low52W, 2),
		High3M: Round(r.High3M, 2), Low3M: Round(r.Low3M, 2),
		High1M: Round(r.High1M, 2), Low1M: Round(r.Low1M, 2),
	}
}

// Estimator fills missing bounds from the current price.
type Estimator struct {
	Factors Factors
}

// NewEstimator returns an Estimator using f, or DefaultFactors when f is zero.
func NewEstimator(f Factors) Estimator {
	if f == (Factors{}) {
		f = DefaultFactors
	}
	return Estimator{Factors: f}
}

// Fill keeps every bound the provider supplied and derives the rest.
func (e Estimator) Fill(q provider.Quote) Ranges {
	price := q.CurrentPrice()
	f := e.Factors
	if f == (Factors{}) {
		f = DefaultFactors
	}
	return Ranges{
		High52W: or(q.High52W, price*f.High52W),
		Low52W:  or(q.Low52W, price*f.Low52W),
		High3M:  or(q.High3M, price*f.High3M),
		Low3M:   or(q.Low3M, price*f.Low3M),
		High1M:  or(q.High1M, price*f.High1M),
		Low1M:   or(q.Low1M, price*f.Low1M),
	}
}

func or(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
