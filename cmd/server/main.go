package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"stockanalyzer/internal/app"
	"stockanalyzer/internal/config"
	"stockanalyzer/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	cfg.Logging.ServiceName = "stockanalyzer-server"
	lg, err := logger.Init(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("logger")
	}

	ps := app.NewProviders(cfg, lg)
	timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
	h := newRouter(&server{
		runner:  app.NewRunner(cfg, ps, lg),
		timeout: timeout,
		log:     lg,
	}, logger.NewAccessLogger(cfg.Logging))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		lg.Info().Str("port", cfg.Server.Port).Int("providers", len(ps.All())).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
