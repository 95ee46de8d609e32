package relay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"opal.anytrip.au/internal/logging"
	"opal.anytrip.au/internal/models"
	"opal.anytrip.au/internal/opal"
)

// tripHandler relays a trip query to the upstream trip planner and, for
// priceable responses, splices recomputed Opal fares into each journey.
// Anything else — non-JSON bodies, upstream errors, responses without
// the rapidJSON/EPSG:4326 output parameters — is passed through
// unchanged.
func (relay *Relay) tripHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	rawQuery := r.URL.RawQuery
	auth := r.Header.Get("Authorization")

	key := cacheKey(auth, rawQuery)
	upstream, cached := relay.cache.get(ctx, key)
	if cached {
		relay.Metrics.CacheHits.Inc()
	} else {
		relay.Metrics.CacheMisses.Inc()

		var err error
		upstream, err = relay.fetchUpstream(ctx, rawQuery, auth)
		if err != nil {
			relay.badGatewayResponse(w, r, err)
			return
		}
		if upstream.Status == http.StatusOK {
			relay.cache.set(ctx, key, upstream)
		}
	}

	if !strings.Contains(upstream.ContentType, "application/json") {
		relay.writeUpstream(w, upstream)
		return
	}

	body, err := relay.spliceFares(logger, r.URL.Query(), upstream.Body)
	if err != nil {
		// Malformed JSON is the upstream's to explain; pass it through.
		logging.LogError(logger, "could not parse upstream response", err)
		relay.writeUpstream(w, upstream)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(upstream.Status)
	if _, err := w.Write(body); err != nil {
		logging.LogError(logger, "failed to write trip response", err)
	}
}

// cacheKey derives the cache key for a request. The authorization
// header is part of the key so responses are never shared across
// credentials.
func cacheKey(auth, rawQuery string) string {
	sum := sha256.Sum256([]byte(auth + "|" + rawQuery))
	return hex.EncodeToString(sum[:])
}

// fetchUpstream forwards the query string verbatim to the upstream trip
// planner, relaying the caller's authorization header when present.
func (relay *Relay) fetchUpstream(ctx context.Context, rawQuery, auth string) (*cachedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relay.Config.UpstreamURL+"?"+rawQuery, nil)
	if err != nil {
		return nil, err
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	start := time.Now()
	resp, err := relay.client.Do(req)
	relay.Metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		relay.Metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		relay.Metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	relay.Metrics.UpstreamRequests.WithLabelValues("ok").Inc()

	return &cachedResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (relay *Relay) writeUpstream(w http.ResponseWriter, upstream *cachedResponse) {
	if upstream.ContentType != "" {
		w.Header().Set("Content-Type", upstream.ContentType)
	}
	w.WriteHeader(upstream.Status)
	_, _ = w.Write(upstream.Body)
}

// spliceFares recomputes fares for every journey in a rapidJSON trip
// response and splices the resulting tickets under each journey's
// "fares" key, preserving every other field of the upstream document.
// Responses without journeys or without the required output parameters
// are returned as-is.
func (relay *Relay) spliceFares(logger *slog.Logger, params url.Values, body []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	journeys, ok := doc["journeys"].([]any)
	if !ok || params.Get("outputFormat") != "rapidJSON" || params.Get("coordOutputFormat") != "EPSG:4326" {
		return body, nil
	}

	debug := params.Has("anytripFareDebug")
	debugJourneys := make([]map[string]any, 0, len(journeys))

	for i, journeyAny := range journeys {
		journey, ok := journeyAny.(map[string]any)
		if !ok {
			continue
		}

		legs, err := decodeLegs(journey["legs"])
		if err != nil || len(legs) == 0 {
			continue
		}

		calculator := opal.NewCalculator(relay.Networks)
		if err := addLegs(calculator, legs); err != nil {
			relay.Metrics.FareErrors.Inc()
			logging.LogError(logger, "fare computation failed", err, slog.Int("journey", i))
			continue
		}

		tickets := calculator.Tickets()
		relay.Metrics.JourneysPriced.Inc()
		journey["fares"] = map[string]any{"tickets": tickets}

		if debug {
			debugJourneys = append(debugJourneys, compareFares(journey, tickets))
		}
	}

	if debug {
		delete(doc, "journeys")
		doc["debugJourneys"] = debugJourneys
	}

	return json.Marshal(doc)
}

func addLegs(calculator *opal.Calculator, legs []*models.EfaLeg) error {
	for _, leg := range legs {
		if err := calculator.AddLeg(leg); err != nil {
			return err
		}
	}
	return nil
}

// decodeLegs round-trips the generic journey legs into typed EFA leg
// partials for the calculator. The generic document stays the source of
// truth for serialization.
func decodeLegs(legsAny any) ([]*models.EfaLeg, error) {
	data, err := json.Marshal(legsAny)
	if err != nil {
		return nil, err
	}
	var legs []*models.EfaLeg
	if err := json.Unmarshal(data, &legs); err != nil {
		return nil, err
	}
	return legs, nil
}

// compareFares builds the debug comparison of the upstream's own
// evaluation totals against the recomputed ones, per passenger
// category.
func compareFares(journey map[string]any, tickets []models.Ticket) map[string]any {
	recomputed := make(map[string]string)
	for _, ticket := range tickets {
		if ticket.Properties.EvaluationTicket != "" {
			recomputed[ticket.Person] = ticket.Properties.PriceTotalFare
		}
	}

	upstream := upstreamEvaluationTotals(journey)

	comparison := make(map[string]any, len(recomputed))
	for person, total := range recomputed {
		comparison[person] = map[string]any{
			"efaTotalFare":     upstream[person],
			"anytripTotalFare": total,
		}
	}
	return comparison
}

// upstreamEvaluationTotals sums the upstream's evaluation tickets per
// passenger category from the generic journey document.
func upstreamEvaluationTotals(journey map[string]any) map[string]string {
	totals := make(map[string]float64)

	fare, _ := journey["fare"].(map[string]any)
	ticketsAny, _ := fare["tickets"].([]any)
	for _, ticketAny := range ticketsAny {
		ticket, ok := ticketAny.(map[string]any)
		if !ok {
			continue
		}
		properties, _ := ticket["properties"].(map[string]any)
		if properties == nil {
			continue
		}
		if evaluation, _ := properties["evaluationTicket"].(string); evaluation == "" {
			continue
		}
		person, _ := ticket["person"].(string)
		if price, ok := properties["priceTotalFare"].(string); ok {
			if v, err := strconv.ParseFloat(price, 64); err == nil {
				totals[person] += v
			}
		}
	}

	out := make(map[string]string, len(totals))
	for person, total := range totals {
		out[person] = strconv.FormatFloat(total, 'f', 2, 64)
	}
	return out
}
