// Package relay forwards trip-planning requests to the upstream EFA
// API and splices recomputed Opal fares into the journeys it returns.
// Responses that cannot be priced (non-JSON, upstream errors, missing
// output-format parameters) pass through unchanged so callers written
// against the upstream API are unaffected.
package relay

import (
	"net/http"

	"opal.anytrip.au/internal/app"
)

type Relay struct {
	*app.Application
	client *http.Client
	cache  *responseCache
}

// NewRelay creates a new Relay instance. The upstream HTTP client uses
// the configured timeout; the Redis response cache is enabled only when
// a Redis address is configured.
func NewRelay(application *app.Application) *Relay {
	return &Relay{
		Application: application,
		client:      &http.Client{Timeout: application.Config.UpstreamTimeout},
		cache:       newResponseCache(application.Config.RedisAddr, application.Config.CacheTTL),
	}
}
