package relay

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Routes builds the relay's router: the trip endpoint mirrors the
// upstream API's path so clients only need to change their base URL.
func (relay *Relay) Routes() http.Handler {
	router := httprouter.New()

	router.Handler(http.MethodGet, "/v1/tp/trip", http.HandlerFunc(relay.tripHandler))
	router.Handler(http.MethodGet, "/metrics", relay.Metrics.Handler())

	logRequests := NewRequestLoggingMiddleware(relay.Logger)
	return logRequests(router)
}
