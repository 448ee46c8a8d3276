package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthhq/hearth/internal/activity"
	"github.com/hearthhq/hearth/internal/api"
	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/config"
	"github.com/hearthhq/hearth/internal/database"
	"github.com/hearthhq/hearth/internal/digest"
	"github.com/hearthhq/hearth/internal/logging"
	"github.com/hearthhq/hearth/internal/metrics"
	"github.com/hearthhq/hearth/internal/server"
	"github.com/joho/godotenv"
	"log/slog"
)

func main() {
	// Local dev convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting hearth")

	logger.Info("connecting to database")
	db, err := database.Connect(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// Run pending migrations (non-fatal to allow app to start even if migrations fail)
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	// Activity sources. Gatherings look back one recent window so a just-ended
	// one can still be bucketed as recent; shoutouts keep a month of history
	// since they have no section of their own.
	collectors := []activity.Collector{
		collector.WrapCollector(database.NewGatheringCollector(db, cfg.Activity.RecentWindow)),
		collector.WrapCollector(database.NewResourceCollector(db)),
		collector.WrapCollector(database.NewMessageCollector(db)),
		collector.WrapCollector(database.NewShoutoutCollector(db, 30*24*time.Hour)),
	}

	classifier := activity.NewClassifier(activity.Thresholds{
		InProgressWindow: cfg.Activity.InProgressWindow,
		RecentWindow:     cfg.Activity.RecentWindow,
	})
	service := activity.NewService(collectors, classifier, logger)

	// Digest generation falls back to a deterministic summarizer when no
	// OpenAI key is configured.
	var summarizer digest.Summarizer
	digestCfg := digest.ConfigFromEnv()
	if openaiClient, err := digest.NewOpenAIClient(digestCfg, logger); err != nil {
		logger.Warn("digest falling back to mock summarizer", "error", err)
		summarizer = digest.NewMockSummarizer()
	} else {
		logger.Info("using OpenAI digest", "model", digestCfg.Model)
		summarizer = openaiClient
	}

	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), db); err != nil {
			logger.Error("health check failed", "error", err)
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Service info endpoint
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hearth","status":"ready","version":"0.1.0"}`))
	})

	mux.Handle("/metrics", collector.Handler())

	logger.Info("setting up REST API")
	feedCache := api.NewFeedCache(cfg.Activity.FeedCacheTTL)
	activityHandler := api.NewActivityHandler(service, summarizer, feedCache, logger)
	api.SetupRoutes(mux, activityHandler, authConfig, logger)

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("hearth started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
