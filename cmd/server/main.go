/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Gravity HRM engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env + optional .env file)
  2. Initialize the SQLite document store
  3. Create the API handler, seed defaults, restore the live traffic sheet
  4. Configure the HTTP router
  5. Start the expiry sweeper
  6. Serve with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper, close the database
  4. Exit

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"github.com/go-chi/httplog/v3"

	"github.com/gravity/hrm-engine/api"
	"github.com/gravity/hrm-engine/config"
	"github.com/gravity/hrm-engine/hrm"
	"github.com/gravity/hrm-engine/payroll"
	"github.com/gravity/hrm-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: httplog.SchemaECS.Concise(false).ReplaceAttr,
	}))
	slog.SetDefault(logger)

	// Initialize store
	kv, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	store := hrm.NewStore(kv)

	// Initialize handler
	handler := api.NewHandler(store, logger)
	handler.PayrollPolicy = payroll.ParsePolicy(cfg.PayrollPolicy)
	if err := handler.Bootstrap(context.Background()); err != nil {
		logger.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(handler, logger, cfg.StaticDir)

	// Background purge of expired past employees
	sweeper := api.NewExpirySweeper(store, logger)
	sweeper.CheckInterval = cfg.SweepInterval
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
