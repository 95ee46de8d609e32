package relay

import (
	"encoding/json"
	"net/http"
)

// badGatewayResponse sends a 502 when the upstream trip planner could
// not be reached at all. Upstream responses that arrive with an error
// status are not mapped here; they pass through verbatim.
func (relay *Relay) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	relay.Logger.Error("upstream request failed", "error", err, "path", r.URL.Path)

	response := struct {
		Code int    `json:"code"`
		Text string `json:"text"`
	}{
		Code: http.StatusBadGateway,
		Text: "upstream trip planner unavailable",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		relay.Logger.Error("failed to encode bad gateway response", "error", err)
	}
}
