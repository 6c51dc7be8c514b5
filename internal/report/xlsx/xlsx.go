// Package xlsx renders analysis records into a formatted spreadsheet.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"stockanalyzer/internal/report"
)

const (
	// SheetName is the single worksheet written.
	SheetName = "Stock Data"

	titleRow  = 1
	headerRow = 3
	firstRow  = 4
	maxWidth  = 22

	priceFormat   = `"₹"#,##0.00`
	percentFormat = `#,##0.0`
	borderColor   = "D3D3D3"
)

type kind int

const (
	text kind = iota
	price
	percent
)

type column struct {
	header string
	kind   kind
	value  func(report.Record) any
}

var columns = []column{
	{"Symbol", text, func(r report.Record) any { return r.Symbol }},
	{"Current_Price", price, func(r report.Record) any { return r.CurrentPrice }},
	{"52_Week_High", price, func(r report.Record) any { return r.High52W }},
	{"52_Week_Low", price, func(r report.Record) any { return r.Low52W }},
	{"3_Month_High", price, func(r report.Record) any { return r.High3M }},
	{"3_Month_Low", price, func(r report.Record) any { return r.Low3M }},
	{"1_Month_High", price, func(r report.Record) any { return r.High1M }},
	{"1_Month_Low", price, func(r report.Record) any { return r.Low1M }},
	{"Data_Source", text, func(r report.Record) any { return r.DataSource }},
	{"Price_vs_52W", percent, func(r report.Record) any { return r.Position52W }},
	{"Price_vs_3M", percent, func(r report.Record) any { return r.Position3M }},
	{"Price_vs_1M", percent, func(r report.Record) any { return r.Position1M }},
	{"Current_vs_All", percent, func(r report.Record) any { return r.Aggregate }},
}

// Headers returns the column headers in sheet order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// FileName is the report file name for a run generated at t.
func FileName(t time.Time) string {
	return "Stock_Analysis_Report_" + t.Format("20060102_150405") + ".xlsx"
}

// Renderer writes one workbook per call into Dir.
type Renderer struct {
	Dir string
	Now func() time.Time
}

var _ report.Renderer = (*Renderer)(nil)

// Render writes records and returns the workbook path.
func (r *Renderer) Render(ctx context.Context, records []report.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("xlsx: output dir: %w", err)
	}

	f, err := Build(records, now)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(now))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("xlsx: save %s: %w", path, err)
	}
	return path, nil
}

// Build lays out records in a new in-memory workbook. The caller closes it.
func Build(records []report.Record, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx: sheet: %w", err)
	}
	if err := layout(f, records, generated); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func layout(f *excelize.File, records []report.Record, generated time.Time) error {
	st, err := newStyles(f)
	if err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	title := "NSE Stock Analysis Report - " + generated.Format("02 January 2006, 03:04 PM")
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return fmt.Errorf("xlsx: title: %w", err)
	}
	if err := f.MergeCell(SheetName, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("xlsx: merge title: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", st.title); err != nil {
		return err
	}
	if err := f.SetRowHeight(SheetName, titleRow, 30); err != nil {
		return err
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(SheetName, cell, c.header); err != nil {
			return fmt.Errorf("xlsx: header %s: %w", c.header, err)
		}
		widths[i] = utf8.RuneCountInString(c.header)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
	if err := f.SetCellStyle(SheetName, first, last, st.header); err != nil {
		return err
	}
	if err := f.SetRowHeight(SheetName, headerRow, 40); err != nil {
		return err
	}

	for n, rec := range records {
		row := firstRow + n
		for i, c := range columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			v := c.value(rec)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx: %s: %w", cell, err)
			}
			if err := f.SetCellStyle(SheetName, cell, cell, st.of(c.kind)); err != nil {
				return err
			}
			widths[i] = max(widths[i], displayLen(v))
		}
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, float64(min(w+3, maxWidth))); err != nil {
			return err
		}
	}
	return nil
}

func displayLen(v any) int {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x)
	case float64:
		return len(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return len(fmt.Sprint(x))
	}
}

type styles struct {
	title, header, text, price, percent int
}

func (s styles) of(k kind) int {
	switch k {
	case price:
		return s.price
	case percent:
		return s.percent
	default:
		return s.text
	}
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	border := []excelize.Border{
		{Type: "left", Color: borderColor, Style: 1},
		{Type: "right", Color: borderColor, Style: 1},
		{Type: "top", Color: borderColor, Style: 1},
		{Type: "bottom", Color: borderColor, Style: 1},
	}
	pf, cf := priceFormat, percentFormat

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: center,
	}); err != nil {
		return s, fmt.Errorf("xlsx: title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	}); err != nil {
		return s, fmt.Errorf("xlsx: header style: %w", err)
	}
	if s.text, err = f.NewStyle(&excelize.Style{Alignment: center, Border: border}); err != nil {
		return s, fmt.Errorf("xlsx: text style: %w", err)
	}
	if s.price, err = f.NewStyle(&excelize.Style{Alignment: center, Border: border, CustomNumFmt: &pf}); err != nil {
		return s, fmt.Errorf("xlsx: price style: %w", err)
	}
	if s.percent, err = f.NewStyle(&excelize.Style{Alignment: center, Border: border, CustomNumFmt: &cf}); err != nil {
		return s, fmt.Errorf("xlsx: percent style: %w", err)
	}
	return s, nil
}
