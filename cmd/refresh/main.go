// Command refresh runs one dashboard refresh and exits. It publishes to the
// configured store and can also write the payload to a file.
//
//	refresh -days 7
//	refresh -start 2025-01-01 -end 2025-01-31 -out data.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite/ads-dashboard/internal/app"
	"github.com/ignite/ads-dashboard/internal/config"
	"github.com/ignite/ads-dashboard/internal/dashboard"
	"github.com/ignite/ads-dashboard/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	start := flag.String("start", "", "start date (YYYY-MM-DD), requires -end")
	end := flag.String("end", "", "end date (YYYY-MM-DD), requires -start")
	days := flag.Int("days", 0, "report the last N full days (default from config)")
	out := flag.String("out", "", "also write the payload to this file")
	flag.Parse()

	if err := run(*configPath, dashboard.RangeRequest{StartDate: *start, EndDate: *end, Days: *days}, *out); err != nil {
		logger.Error("refresh failed", "error", err.Error())
		fmt.Fprintln(os.Stderr, "refresh failed:", err)
		os.Exit(1)
	}
}

func run(configPath string, req dashboard.RangeRequest, out string) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.GoogleAds.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	payload, err := deps.Dashboard.Refresh(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("refresh complete",
		"start", payload.DateRange.Start,
		"end", payload.DateRange.End,
		"campaigns", len(payload.Campaigns),
		"insights", len(payload.Insights),
		"recommendations", len(payload.Recommendations))

	if out == "" {
		return nil
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
