package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ipl-win-predictor/internal/app"
	"ipl-win-predictor/internal/cfg"
	"ipl-win-predictor/internal/metrics"
	"ipl-win-predictor/internal/resolver"
	"ipl-win-predictor/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	app.SetupLogging(c.LogLevel, false, os.Stderr)

	// Initialize components
	m := metrics.New()
	mw := metrics.NewWrapper(m)

	classifier, closeClassifier, err := app.OpenClassifier(c, mw)
	if err != nil {
		log.Fatal().Err(err).Str("source", c.ModelSource).Msg("failed to open classifier")
	}
	defer closeClassifier()

	r := resolver.New(classifier,
		resolver.WithTolerance(c.ProbTolerance),
		resolver.WithMetrics(mw),
	)

	info := map[string]string{
		"model_source": c.ModelSource,
		"started_at":   time.Now().UTC().Format(time.RFC3339),
		"listen_port":  strconv.Itoa(c.ListenPort),
	}
	srv := server.New(r, prometheus.DefaultGatherer, c.ListenPort, info)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	waitForShutdown(srv, errCh)
}

// waitForShutdown blocks until a signal or a server error, then drains
// in-flight requests.
func waitForShutdown(srv *server.Server, errCh <-chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("prediction server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
		return
	}
	log.Info().Msg("prediction server stopped")
}
