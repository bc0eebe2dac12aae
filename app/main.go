package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metabolical/healthnews/app/api"
	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/cfg"
	"github.com/metabolical/healthnews/app/database"
	"github.com/metabolical/healthnews/app/scraper"
	"github.com/metabolical/healthnews/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Metabolical Health News server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	// Category taxonomy (built-in unless overridden via CATEGORIES_FILE)
	taxonomy, err := articles.LoadTaxonomy(appCfg.CategoriesFile)
	if err != nil {
		log.Fatal("Failed to load category definitions:", err)
	}
	slog.Info("Category taxonomy loaded", "categories", len(taxonomy.CategoryNames()))

	// Shared HTTP client for scraping and URL checks
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	validator := articles.NewURLValidator(httpClient, true, appCfg.UserAgent)
	metaCache := articles.NewMetaCache(time.Duration(appCfg.CacheTTL) * time.Second)
	articleRepo := database.NewArticleRepository(db, validator)

	articleScraper := scraper.NewScraper(httpClient, taxonomy, validator, appCfg.UserAgent)
	contentExtractor := scraper.NewContentExtractor()
	sources := scraper.DefaultSources()

	// Initialize and start scheduler
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "sources", len(sources))
	scheduler := tasks.NewScheduler(sources, articleScraper, contentExtractor, validator,
		articleRepo, metaCache, httpClient)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	apiHandler := api.NewHandler(articleRepo, taxonomy, metaCache, scheduler, articleScraper, sources)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
