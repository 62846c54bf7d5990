// Package main implements the tzgrid web service, a JSON API over the zone
// catalog and the comparison grid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/codeGROOVE-dev/tzgrid/pkg/catalog"
	"github.com/codeGROOVE-dev/tzgrid/pkg/metrics"
)

const serverVersion = "tzgrid-server v0.3.0"

var (
	port        = flag.String("port", "", "Port for web server (or set PORT, default 8080)")
	envFile     = flag.String("env", ".env", "Environment file to load")
	catalogKind = flag.String("catalog", "", "Catalog source: auto, dir, embedded, http (or set TZGRID_CATALOG)")
	mirrorURL   = flag.String("mirror", "", "tz database mirror for the http catalog (or set TZGRID_MIRROR)")
	cacheDir    = flag.String("cache-dir", "", "Cache directory for downloaded tables (or set CACHE_DIR)")
	ratePerMin  = flag.Int("rate", 0, "Requests per minute per client (or set RATE_LIMIT, default 120)")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println(serverVersion)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load env file", "file", *envFile, "error", err)
	}

	if *port == "" {
		*port = envOr("PORT", "8080")
	}
	if *catalogKind == "" {
		*catalogKind = envOr("TZGRID_CATALOG", catalog.KindAuto)
	}
	if *mirrorURL == "" {
		*mirrorURL = os.Getenv("TZGRID_MIRROR")
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}
	if *ratePerMin <= 0 {
		*ratePerMin = 120
		if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT")); err == nil && v > 0 {
			*ratePerMin = v
		}
	}

	logger.Info("server configuration",
		"port", *port,
		"verbose", *verbose,
		"catalog", *catalogKind,
		"mirror", *mirrorURL,
		"cache_dir", *cacheDir,
		"rate_per_minute", *ratePerMin)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Open(ctx, catalog.Config{
		Kind:      *catalogKind,
		MirrorURL: *mirrorURL,
		CacheDir:  *cacheDir,
	}, logger)
	if err != nil {
		logger.Error("failed to load zone catalog", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, "tzgrid")
	m.CatalogZones.Set(float64(cat.Len()))

	s := newServer(cat, m, reg, newRateLimiter(*ratePerMin, time.Minute), logger)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", *port, "zones", cat.Len())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
