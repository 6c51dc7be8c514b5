package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"stockanalyzer/internal/analysis"
	"stockanalyzer/internal/symbols"
)

const maxSymbols = 100

type analyzer interface {
	Run(ctx context.Context, syms []symbols.Symbol) analysis.Result
}

type server struct {
	runner  analyzer
	timeout time.Duration
	log     zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func newRouter(s *server, access zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(access))
	r.Use(recoverPanic(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(withGzip)
	r.Use(limitBody)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/report", s.getReport)
		r.Post("/report", s.postReport)
	})
	return r
}

func (s *server) getReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("symbols")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "missing symbols query param")
		return
	}
	s.writeReport(w, r, symbols.FromCSV(q))
}

type postBody struct {
	Symbols []string `json:"symbols"`
}

func (s *server) postReport(w http.ResponseWriter, r *http.Request) {
	var b postBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.writeReport(w, r, symbols.FromCSV(strings.Join(b.Symbols, ",")))
}

func (s *server) writeReport(w http.ResponseWriter, r *http.Request, syms []symbols.Symbol) {
	if len(syms) == 0 {
		writeError(w, http.StatusBadRequest, "symbols cannot be empty")
		return
	}
	if len(syms) > maxSymbols {
		writeError(w, http.StatusBadRequest, "too many symbols (max 100)")
		return
	}
	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	writeJSON(w, http.StatusOK, s.runner.Run(ctx, syms))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
