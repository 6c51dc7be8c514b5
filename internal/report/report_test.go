package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockanalyzer/internal/metrics"
	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/symbols"
)

func TestBuild_RoundsAndKeepsProvenance(t *testing.T) {
	t.Parallel()

	q := provider.Quote{Symbol: "IDEA", Price: provider.Float(7.4549), Source: "NSE Official"}
	r := metrics.Ranges{
		High52W: 19.1849, Low52W: 6.6012,
		High3M: 8.9, Low3M: 6.95,
		High1M: 8.004, Low1M: 7.115,
	}
	p := metrics.Positions{Week52: 67.04, Month3: 25.26, Month1: 38.55, Aggregate: 43.61}

	rec := Build(symbols.Symbol{Ticker: "IDEA", Name: "Vodafone Idea Limited"}, q, r, p)

	assert.Equal(t, Record{
		Symbol:       "IDEA",
		Name:         "Vodafone Idea Limited",
		CurrentPrice: 7.45,
		High52W:      19.18,
		Low52W:       6.6,
		High3M:       8.9,
		Low3M:        6.95,
		High1M:       8.0,
		Low1M:        7.12,
		DataSource:   "NSE Official",
		Position52W:  67.0,
		Position3M:   25.3,
		Position1M:   38.6,
		Aggregate:    43.6,
	}, rec)
}

func TestBuild_MissingPriceIsZero(t *testing.T) {
	t.Parallel()

	rec := Build(symbols.Symbol{Ticker: "XYZ"}, provider.Quote{Source: "Unavailable"}, metrics.Ranges{}, metrics.Positions{})
	assert.Zero(t, rec.CurrentPrice)
	assert.Equal(t, "Unavailable", rec.DataSource)
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []Record{
		{Symbol: "RELIANCE", CurrentPrice: 2500, Low52W: 2100, High52W: 2800, Position52W: 57.1, Position3M: 40, Position1M: 28.6, Aggregate: 41.9, DataSource: "Yahoo Finance"},
		{Symbol: "XYZ", Position52W: 50, Position3M: 50, Position1M: 50, Aggregate: 50, DataSource: "Unavailable"},
	}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Current_vs_All (%)")
	assert.Contains(t, lines[1], "2500.00")
	assert.Contains(t, lines[1], "41.9")
	assert.Contains(t, lines[1], "Yahoo Finance")
	assert.Contains(t, lines[2], "Unavailable")
}
