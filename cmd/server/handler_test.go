package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockanalyzer/internal/analysis"
	"stockanalyzer/internal/report"
	"stockanalyzer/internal/symbols"
)

type fakeRunner struct {
	got []symbols.Symbol
}

func (f *fakeRunner) Run(_ context.Context, syms []symbols.Symbol) analysis.Result {
	f.got = syms
	res := analysis.Result{ID: "run-1", GeneratedAt: time.Date(2025, 10, 10, 15, 4, 5, 0, time.UTC)}
	for _, s := range syms {
		res.Records = append(res.Records, report.Record{Symbol: s.Ticker, DataSource: "Unavailable", Aggregate: 50})
	}
	return res
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, []symbols.Symbol) analysis.Result { panic("boom") }

func newTestServer(r analyzer) http.Handler {
	return newRouter(&server{runner: r, timeout: time.Second, log: zerolog.Nop()}, zerolog.Nop())
}

func decode(t *testing.T, body io.Reader) analysis.Result {
	t.Helper()
	var res analysis.Result
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestGetReport_KeepsRequestOrder(t *testing.T) {
	t.Parallel()

	fr := &fakeRunner{}
	rr := httptest.NewRecorder()
	newTestServer(fr).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report?symbols=tcs,RELIANCE,idea", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	res := decode(t, rr.Body)
	assert.Equal(t, "run-1", res.ID)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "TCS", res.Records[0].Symbol)
	assert.Equal(t, "RELIANCE", res.Records[1].Symbol)
	assert.Equal(t, "IDEA", res.Records[2].Symbol)
}

func TestPostReport(t *testing.T) {
	t.Parallel()

	fr := &fakeRunner{}
	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"symbols":["ADANIPORTS","BAJAJ-AUTO"]}`))
	rr := httptest.NewRecorder()
	newTestServer(fr).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []symbols.Symbol{
		{Ticker: "ADANIPORTS", Name: "ADANIPORTS"},
		{Ticker: "BAJAJ-AUTO", Name: "BAJAJ-AUTO"},
	}, fr.got)
}

func TestReport_BadRequests(t *testing.T) {
	t.Parallel()

	for name, req := range map[string]*http.Request{
		"missing query":  httptest.NewRequest(http.MethodGet, "/api/report", nil),
		"blank query":    httptest.NewRequest(http.MethodGet, "/api/report?symbols=,,", nil),
		"invalid json":   httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"symbols":`)),
		"unknown field":  httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"tickers":["TCS"]}`)),
		"empty symbols":  httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"symbols":[]}`)),
		"too many":       httptest.NewRequest(http.MethodGet, "/api/report?symbols="+strings.Repeat("A,", maxSymbols)+"B", nil),
		"oversized body": httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"symbols":["`+strings.Repeat("A", 2<<20)+`"]}`)),
	} {
		rr := httptest.NewRecorder()
		newTestServer(&fakeRunner{}).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestReport_Gzip(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/report?symbols=TCS", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	newTestServer(&fakeRunner{}).ServeHTTP(rr, req)

	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	res := decode(t, zr)
	require.Len(t, res.Records, 1)
}

func TestReport_PanicIs500(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newTestServer(panicRunner{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report?symbols=TCS", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newTestServer(&fakeRunner{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
