package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/league-ratings/app/observability/attr"
)

func (app *App) startHTTP(ctx context.Context) {
	logger := app.Observability.Logger

	app.httpServer = &http.Server{
		Addr:              app.Config.HTTP.Address,
		Handler:           app.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", attr.String("address", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", attr.Error(err))
		}
	}()

	if app.Config.Observability.MetricsAddress == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Observability.MetricsHandler())
	app.metricsServer = &http.Server{
		Addr:              app.Config.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.InfoContext(ctx, "Starting metrics server", attr.String("address", app.metricsServer.Addr))
		if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Metrics server failed", attr.Error(err))
		}
	}()
}
