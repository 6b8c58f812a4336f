// Package main provides the entry point for the LinkPulse service.
//
//	@title			LinkPulse API
//	@version		1.0.0
//	@description	A URL shortening service with click analytics: device, location, referrer and time-series breakdowns.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"LinkPulse-Backend/internal/analytics"
	"LinkPulse-Backend/internal/config"
	"LinkPulse-Backend/internal/database"
	"LinkPulse-Backend/internal/geoip"
	httpHandler "LinkPulse-Backend/internal/handler/http"
	"LinkPulse-Backend/internal/repository/sqlstore"
	"LinkPulse-Backend/internal/service"
	"LinkPulse-Backend/pkg/logger"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "LinkPulse-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkPulse service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Initialize storage, geolocation and services
	storage := sqlstore.New(db, log)

	var resolver geoip.Resolver
	if cfg.Geolocation.Enabled {
		resolver = geoip.NewClient(&cfg.Geolocation, log)
	} else {
		log.Info("geolocation is disabled, clicks will be recorded without location data")
		resolver = geoip.Disabled{}
	}

	linkService := service.NewLinkService(storage, &cfg.URLShortener)
	aggregator := analytics.NewAggregator(storage)

	// Start the asynchronous click tracker
	tracker := analytics.NewTracker(storage, resolver, log, cfg.Tracking)
	if err := tracker.Start(); err != nil {
		log.Fatal("failed to start click tracker", zap.Error(err))
	}

	// Create HTTP server
	apiServer := httpHandler.NewServer(storage, linkService, aggregator, tracker, log, cfg.URLShortener.BaseURL)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.Int("port", cfg.HTTPServer.Port))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkPulse service...")

	// Gracefully stop HTTP server first so no new clicks are queued
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Drain queued clicks before closing the database
	if err := tracker.Stop(); err != nil {
		log.Error("failed to stop click tracker", zap.Error(err))
	}
}
