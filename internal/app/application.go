package app

import (
	"log/slog"
	"time"

	"opal.anytrip.au/internal/metrics"
	"opal.anytrip.au/internal/opal"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware: the process configuration, the structured logger, the
// loaded fare reference dataset, and the metrics collector.
type Application struct {
	Config   Config
	Logger   *slog.Logger
	Networks opal.Networks
	Metrics  *metrics.Collector
}

// Config holds all the configuration settings for our Application:
// the network port to listen on, the name of the current operating
// environment (development, staging, production, etc.), the upstream
// trip planner to relay to, and the optional Redis response cache.
type Config struct {
	Port            int
	Env             string
	UpstreamURL     string
	UpstreamTimeout time.Duration
	RefDataPath     string
	RedisAddr       string
	CacheTTL        time.Duration
}
