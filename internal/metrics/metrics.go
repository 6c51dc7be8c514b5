// Package metrics derives range bands and range positions from quotes.
package metrics

import (
	"github.com/shopspring/decimal"
)

// Neutral is reported for a degenerate band, where no position is defined.
const Neutral = 50.0

// Window is one of the three lookback bands.
type Window int

const (
	Week52 Window = iota
	Month3
	Month1
)

func (w Window) String() string {
	switch w {
	case Week52:
		return "52w"
	case Month3:
		return "3m"
	case Month1:
		return "1m"
	}
	return "unknown"
}

// Round rounds v half away from zero to places decimal digits.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Position places current inside [low, high] as a percentage clamped to
// [0, 100] and rounded to one decimal. A band with high == low or high == 0
// yields Neutral.
func Position(current, low, high float64) float64 {
	if high == low || high == 0 {
		return Neutral
	}
	pos := (current - low) / (high - low) * 100
	pos = max(0, min(100, pos))
	return Round(pos, 1)
}

// Aggregate is the unweighted mean of the window positions, rounded to one decimal.
func Aggregate(p52w, p3m, p1m float64) float64 {
	return Round((p52w+p3m+p1m)/3, 1)
}

// Positions holds one position per window plus their aggregate.
type Positions struct {
	Week52    float64
	Month3    float64
	Month1    float64
	Aggregate float64
}

// Compute evaluates current against every band in r.
func Compute(current float64, r Ranges) Positions {
	p := Positions{
		Week52: Position(current, r.Low52W, r.High52W),
		Month3: Position(current, r.Low3M, r.High3M),
		Month1: Position(current, r.Low1M, r.High1M),
	}
	p.Aggregate = Aggregate(p.Week52, p.Month3, p.Month1)
	return p
}
