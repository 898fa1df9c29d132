package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"calorievision-backend/internal/bootstrap"
	"calorievision-backend/internal/shared/config"
	"calorievision-backend/internal/shared/server"
	"calorievision-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": err})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.StartJanitor(ctx)

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           otelhttp.NewHandler(app.Router, cfg.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(telemetry.Logger().Named("http")),
	}

	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("server.error", map[string]any{"err": err})
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AnalysisDelay+10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown", map[string]any{"err": err})
	}
	if err := app.Close(); err != nil {
		telemetry.Error("server.close", map[string]any{"err": err})
	}
	telemetry.Info("server.stopped", nil)
}
