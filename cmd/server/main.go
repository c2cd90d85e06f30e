package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"garage-backend/internal/config"
	"garage-backend/internal/database"
	"garage-backend/internal/logger"
	"garage-backend/internal/metrics"
	"garage-backend/internal/server"
	"garage-backend/internal/service"
	"garage-backend/internal/store/pgstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	db, err := database.Init(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(pgstore.New(db), service.Options{
		TaxRate:              cfg.TaxRate,
		DefaultLaborCharge:   cfg.DefaultLaborCharge,
		RequireTasksComplete: cfg.RequireTasksComplete,
		Location:             cfg.Location,
		Metrics:              metrics.New(reg),
		Logger:               log,
	})

	deps := server.Deps{Service: svc, Logger: log}
	if cfg.MetricsEnabled {
		deps.Gatherer = reg
	}
	app := server.New(cfg, deps)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.WithField("port", cfg.HTTPPort).Info("server starting")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.WithError(err).Fatal("server stopped")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
