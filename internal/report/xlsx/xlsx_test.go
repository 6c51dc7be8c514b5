package xlsx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockanalyzer/internal/report"
)

var generated = time.Date(2025, 10, 10, 15, 4, 5, 0, time.UTC)

func sample() []report.Record {
	return []report.Record{
		{
			Symbol: "RELIANCE", CurrentPrice: 2500,
			High52W: 2800, Low52W: 2100, High3M: 2650, Low3M: 2400, High1M: 2550, Low1M: 2480,
			DataSource:  "Yahoo Finance",
			Position52W: 57.1, Position3M: 40, Position1M: 28.6, Aggregate: 41.9,
		},
		{
			Symbol: "XYZ", DataSource: "A Provider With An Unreasonably Long Name",
			Position52W: 50, Position3M: 50, Position1M: 50, Aggregate: 50,
		},
	}
}

func TestRender_WritesWorkbook(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := &Renderer{Dir: dir, Now: func() time.Time { return generated }}

	path, err := r.Render(t.Context(), sample())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Stock_Analysis_Report_20251010_150405.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	title, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "NSE Stock Analysis Report - 10 October 2025, 03:04 PM", title)

	merged, err := f.GetMergeCells(SheetName)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "M1", merged[0].GetEndAxis())

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Headers(), rows[2])
	assert.Equal(t, []string{
		"RELIANCE", "2500", "2800", "2100", "2650", "2400", "2550", "2480",
		"Yahoo Finance", "57.1", "40", "28.6", "41.9",
	}, rows[3])
	assert.Equal(t, "XYZ", rows[4][0])
	assert.Equal(t, "50", rows[4][12])
}

func TestRender_ColumnWidths(t *testing.T) {
	t.Parallel()

	f, err := Build(sample(), generated)
	require.NoError(t, err)
	defer f.Close()

	symbol, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, 11.0, symbol) // "RELIANCE" + 3

	source, err := f.GetColWidth(SheetName, "I")
	require.NoError(t, err)
	assert.Equal(t, float64(maxWidth), source)

	aggregate, err := f.GetColWidth(SheetName, "M")
	require.NoError(t, err)
	assert.Equal(t, 17.0, aggregate) // header "Current_vs_All" + 3
}

func TestRender_EmptyRunStillHasHeader(t *testing.T) {
	t.Parallel()

	f, err := Build(nil, generated)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers(), rows[2])
}

func TestRender_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := (&Renderer{Dir: t.TempDir()}).Render(ctx, sample())
	require.ErrorIs(t, err, context.Canceled)
}
