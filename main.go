// Package main wires the stock tracking API server: configuration, database,
// market data services, and the HTTP surface.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l1emant/insidex-web/auth"
	"github.com/l1emant/insidex-web/config"
	"github.com/l1emant/insidex-web/internal/api"
	"github.com/l1emant/insidex-web/internal/app"
	"github.com/l1emant/insidex-web/observability"
	"github.com/l1emant/insidex-web/repository"
	"github.com/l1emant/insidex-web/services"
	"github.com/l1emant/insidex-web/stocks"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present (ignore error if it doesn't exist)
	_ = godotenv.Load()

	production := os.Getenv("APP_ENV") == "production"
	observability.InitLogger(production)
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	// The watchlist and sessions live in Postgres. A missing or unreachable
	// database is a startup failure, not something to paper over.
	repo, err := repository.Connect(ctx, cfg.Database.URL)
	if err != nil {
		observability.Fatal("failed to connect to database", "error", err)
	}
	defer repository.Teardown()

	observability.Info("connected to database")

	if !cfg.HasFinnhub() {
		observability.Warn("FINNHUB_API_KEY not set, market data endpoints will return errors")
	}
	finnhub := services.NewFinnhubService(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL)

	stocksService := stocks.NewService(finnhub, repo, cfg)
	authService := auth.NewService(repo, cfg.Auth.SessionTTL, cfg.Auth.CookieName)

	application := app.New(cfg, repo, stocksService, authService, finnhub)
	if err := application.Startup(ctx); err != nil {
		observability.Fatal("failed to start application", "error", err)
	}

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		observability.Info("starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("server forced to shutdown", "error", err)
	}

	application.Shutdown(shutdownCtx)
	observability.Info("server stopped")
}
