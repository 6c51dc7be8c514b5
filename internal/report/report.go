package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"stockanalyzer/internal/metrics"
	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/symbols"
)

// Record is the per-symbol row handed to renderers.
type Record struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	High52W      float64 `json:"high_52w"`
	Low52W       float64 `json:"low_52w"`
	High3M       float64 `json:"high_3m"`
	Low3M        float64 `json:"low_3m"`
	High1M       float64 `json:"high_1m"`
	Low1M        float64 `json:"low_1m"`
	DataSource   string  `json:"data_source"`
	Position52W  float64 `json:"position_52w"`
	Position3M   float64 `json:"position_3m"`
	Position1M   float64 `json:"position_1m"`
	Aggregate    float64 `json:"aggregate_position"`
}

// Build assembles a record, rounding prices to two decimals and positions to one.
func Build(sym symbols.Symbol, q provider.Quote, r metrics.Ranges, p metrics.Positions) Record {
	r = r.Rounded()
	return Record{
		Symbol:       sym.Ticker,
		Name:         sym.Name,
		CurrentPrice: metrics.Round(q.CurrentPrice(), 2),
		High52W:      r.High52W,
		Low52W:       r.Low52W,
		High3M:       r.High3M,
		Low3M:        r.Low3M,
		High1M:       r.High1M,
		Low1M:        r.Low1M,
		DataSource:   q.Source,
		Position52W:  metrics.Round(p.Week52, 1),
		Position3M:   metrics.Round(p.Month3, 1),
		Position1M:   metrics.Round(p.Month1, 1),
		Aggregate:    metrics.Round(p.Aggregate, 1),
	}
}

// Renderer turns records into an artifact and returns a handle to it,
// typically a file path.
type Renderer interface {
	Render(ctx context.Context, records []Record) (string, error)
}

// WriteTable prints the console summary of records.
func WriteTable(w io.Writer, records []Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Symbol\tPrice (₹)\t52W Low\t52W High\t52W %\t3M %\t1M %\tCurrent_vs_All (%)\tSource\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.1f\t%.1f\t%.1f\t%.1f\t%s\t\n",
			r.Symbol, r.CurrentPrice, r.Low52W, r.High52W,
			r.Position52W, r.Position3M, r.Position1M, r.Aggregate, r.DataSource)
	}
	return tw.Flush()
}
