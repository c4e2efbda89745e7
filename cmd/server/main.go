package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/ads-dashboard/internal/api"
	"github.com/ignite/ads-dashboard/internal/app"
	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	return ln.Close()
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err.Error())
		os.Exit(1)
	}

	// Missing credentials do not stop the server: /health reports them and
	// refresh/apply answer with the list until they are set.
	if err := cfg.GoogleAds.Validate(); err != nil {
		logger.Warn("google ads configuration incomplete", "error", err.Error())
	}

	if err := checkPortAvailable(cfg.Server.Addr()); err != nil {
		logger.Error("pre-flight check failed", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize", "error", err.Error())
		os.Exit(1)
	}
	defer deps.Close()

	handlers := api.NewHandlers(deps.Dashboard, deps.Executor, cfg.GoogleAds)
	health := api.NewHealthChecker(deps.Store, deps.Redis, deps.DB, cfg.GoogleAds)
	server := api.NewServer(cfg.Server, handlers, health)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}
	logger.Info("server stopped")
}
