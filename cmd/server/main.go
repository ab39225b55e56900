package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/sitedash-io/sitedash/internal/bootstrap"
	"github.com/sitedash-io/sitedash/internal/config"
	"github.com/sitedash-io/sitedash/internal/modules/handler"
	"github.com/sitedash-io/sitedash/internal/router"
	"github.com/sitedash-io/sitedash/internal/telemetry"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer log.Sync() //nolint:errcheck

	if _, err := telemetry.SetupTracing(cfg); err != nil {
		log.Warn("tracing setup failed", zap.Error(err))
	}
	if _, err := telemetry.SetupMetrics(cfg); err != nil {
		log.Warn("metrics setup failed", zap.Error(err))
	}

	r := router.NewRouter(router.RouterDeps{
		Config:           cfg,
		Log:              log,
		ProjectHandler:   do.MustInvoke[*handler.ProjectHandler](inj),
		DashboardHandler: do.MustInvoke[*handler.DashboardHandler](inj),
		TaskHandler:      do.MustInvoke[*handler.TaskHandler](inj),
		ExpenseHandler:   do.MustInvoke[*handler.ExpenseHandler](inj),
		MaterialHandler:  do.MustInvoke[*handler.MaterialHandler](inj),
		ReportHandler:    do.MustInvoke[*handler.ReportHandler](inj),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store_backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	bootstrap.Shutdown(inj)
	_ = telemetry.Shutdown(ctx)
	_ = telemetry.ShutdownMetrics(ctx)
}
