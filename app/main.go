package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newsmill/newsmill/app/api"
	"github.com/newsmill/newsmill/app/cfg"
	"github.com/newsmill/newsmill/app/collector"
	"github.com/newsmill/newsmill/app/config"
	"github.com/newsmill/newsmill/app/database"
	"github.com/newsmill/newsmill/app/enrich"
	"github.com/newsmill/newsmill/app/pipeline"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Newsmill server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	repo := database.NewArticleRepository(db)

	loader := config.NewLoader(appCfg.SourcesDir)
	sources, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded source configurations", "count", len(sources), "dir", appCfg.SourcesDir)

	enricher := enrich.NewEnricher()

	pipe := pipeline.New(enricher, repo, pipeline.Options{
		WorkerCount:  appCfg.WorkerCount,
		MaxRetries:   appCfg.MaxRetries,
		PollInterval: time.Duration(appCfg.PollInterval) * time.Millisecond,
	})
	pipe.Start()
	defer pipe.Stop()

	httpClient := &http.Client{Timeout: 60 * time.Second}
	rssCollector := collector.NewRSSCollector(httpClient, repo, appCfg.UserAgent)
	scheduler := collector.NewScheduler(rssCollector, pipe, sources,
		time.Duration(appCfg.SchedulerInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(pipe, repo, appCfg.Version)
	router := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Newsmill server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler and pipeline are stopped via defer, in that order, so no new
	// work is enqueued while the pipeline drains its in-flight items.
	slog.Info("Newsmill server shutdown complete")
}
