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

	"github.com/Zillorz/svue-api/logger"
	"github.com/Zillorz/svue-api/src/config"
	"github.com/Zillorz/svue-api/src/db"
	"github.com/Zillorz/svue-api/src/repository"
	"github.com/Zillorz/svue-api/src/router"
	"github.com/Zillorz/svue-api/src/service"
	"github.com/Zillorz/svue-api/src/upstream"
)

// @title StudentVue Gateway API
// @version 1.0
// @description Stateless REST gateway in front of the StudentVue SOAP service

func main() {
	cfg := loadConfig()
	setupLogging()
	server := createServer(cfg)
	startServerWithGracefulShutdown(server, cfg)
}

func loadConfig() config.GlobalConfig {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func setupLogging() {
	jsonLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(jsonLogger)
	logger.Init()
}

func createServer(cfg config.GlobalConfig) *http.Server {
	// One pool for every upstream call; transport timeouts live here, not
	// in the gateway.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	versions := upstream.NewHTTPVersionKeyProvider(cfg.VersionKeyURL, httpClient)
	client := upstream.NewClient(httpClient, versions)

	var cache *repository.CacheRepository
	if cfg.CacheEnabled {
		database, err := db.NewDB(&cfg)
		if err != nil {
			log.Fatalf("Failed to connect to cache database: %v", err)
		}
		cache = repository.NewCacheRepository(database.GetConnection())
	}

	svc := service.NewService(client, cache, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	r := router.Router{
		Logger:  logger.Logger,
		Config:  cfg,
		Service: svc,
	}
	engine, err := r.SetUpRouter()
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler: engine,
	}
}

func startServerWithGracefulShutdown(server *http.Server, cfg config.GlobalConfig) {
	// Channel to listen for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "host", cfg.Host, "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("Shutting down server...")

	if err := server.Shutdown(context.Background()); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server exited gracefully")
}
