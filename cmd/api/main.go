package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"
	// Opal days are computed in the bundle's configured timezone;
	// embed tzdata so containers without a zoneinfo directory work.
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"opal.anytrip.au/internal/app"
	"opal.anytrip.au/internal/logging"
	"opal.anytrip.au/internal/metrics"
	"opal.anytrip.au/internal/refdata"
	"opal.anytrip.au/internal/relay"
)

func main() {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	var cfg app.Config
	var logLevel string

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 4000), "API server port")
	flag.StringVar(&cfg.Env, "env", envDefault("ENV", "development"), "Environment (development|staging|production)")
	flag.StringVar(&cfg.UpstreamURL, "upstream-url", envDefault("UPSTREAM_URL", "https://api.transport.nsw.gov.au/v1/tp/trip"), "Upstream trip planner endpoint")
	flag.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", envDuration("UPSTREAM_TIMEOUT", 15*time.Second), "Upstream request timeout")
	flag.StringVar(&cfg.RefDataPath, "ref-networks", envDefault("REF_NETWORKS", "ref/networks.json"), "Path to the fare reference dataset")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the response cache (empty disables)")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", envDuration("CACHE_TTL", 30*time.Second), "Response cache TTL")
	flag.StringVar(&logLevel, "log-level", envDefault("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	flag.Parse()

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(logLevel))

	networks, err := refdata.Load(cfg.RefDataPath)
	if err != nil {
		logger.Error("failed to load reference dataset", "error", err, "path", cfg.RefDataPath)
		os.Exit(1)
	}
	logger.Info("loaded reference dataset", "bundles", len(networks), "path", cfg.RefDataPath)

	application := &app.Application{
		Config:   cfg,
		Logger:   logger,
		Networks: networks,
		Metrics:  metrics.NewCollector(),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      relay.NewRelay(application).Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
	err = srv.ListenAndServe()
	logger.Error(err.Error())
	os.Exit(1)
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
