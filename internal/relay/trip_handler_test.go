package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opal.anytrip.au/internal/app"
	"opal.anytrip.au/internal/metrics"
	"opal.anytrip.au/internal/opal"
)

// relayTestNetworks is a single-category rail-only bundle, just enough
// to price the canned upstream journey.
func relayTestNetworks() opal.Networks {
	return opal.Networks{{
		Config: opal.NetworkConfig{
			ValidFrom:      "20230701",
			ValidTo:        "20301231",
			TZ:             "Australia/Sydney",
			WeekendFareDOW: []int{6, 7},
		},
		FareTable: map[string]*opal.FareParameters{
			"ADULT": {
				Name:               "Adult",
				Caps:               opal.FareCaps{DailyCap: 1880, WeekendDailyCap: 940, WeeklyCap: 5000},
				IntermodalDiscount: 200,
				Modes: map[opal.Mode][]opal.FareBand{
					opal.ModeRail: {
						{FromKM: 0, ToKM: 10, Peak: 400, OffPeak: 280, FouPeak: 300, FouOffPeak: 210},
						{FromKM: 10, ToKM: 9999, Peak: 497, OffPeak: 347, FouPeak: 372, FouOffPeak: 260},
					},
				},
			},
		},
		DistanceMatrix: map[opal.Mode]map[string]float64{
			opal.ModeRail: {
				"200060:200070": 1.2,
				"200070:200060": 1.2,
			},
		},
		TOU: opal.TimeOfUse{
			PeakHours: opal.PeakHours{
				MetroPeak:      opal.PeakWindow{AMPeak: [2]int{390, 600}, PMPeak: [2]int{900, 1110}},
				OuterMetroPeak: opal.PeakWindow{AMPeak: [2]int{360, 480}, PMPeak: [2]int{840, 1080}},
				FerryMetroPeak: opal.PeakWindow{AMPeak: [2]int{390, 600}, PMPeak: [2]int{900, 1110}},
			},
		},
	}}
}

// One journey, one rail leg Central to Town Hall in the AM peak
// (22:10 UTC is 08:10 in Sydney), plus fields the relay must not touch.
const upstreamTripDoc = `{
	"version": "10.6.14.22",
	"serverInfo": {"controllerVersion": "EFA 10", "calcTime": 312.5},
	"systemMessages": [],
	"journeys": [
		{
			"rating": 0,
			"isAdditional": false,
			"legs": [
				{
					"duration": 600,
					"distance": 1700,
					"origin": {
						"id": "200060-P1",
						"type": "platform",
						"isGlobalId": true,
						"coord": [-33.8832, 151.2055],
						"departureTimePlanned": "2023-09-19T22:10:00Z",
						"parent": {"id": "200060", "type": "stop", "isGlobalId": true, "coord": [-33.8832, 151.2055]}
					},
					"destination": {
						"id": "200070-P2",
						"type": "platform",
						"isGlobalId": true,
						"coord": [-33.8734, 151.2070],
						"arrivalTimePlanned": "2023-09-19T22:20:00Z",
						"parent": {"id": "200070", "type": "stop", "isGlobalId": true, "coord": [-33.8734, 151.2070]}
					},
					"transportation": {
						"id": "nsw:020T1",
						"product": {"class": 1, "name": "Train", "iconId": 1},
						"operator": {"id": "X000", "name": "Sydney Trains"}
					}
				}
			]
		}
	]
}`

func newTestRelay(upstreamURL string) *Relay {
	return NewRelay(&app.Application{
		Config: app.Config{
			UpstreamURL:     upstreamURL,
			UpstreamTimeout: 5 * time.Second,
		},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Networks: relayTestNetworks(),
		Metrics:  metrics.NewCollector(),
	})
}

func doRelayRequest(t *testing.T, relay *Relay, target, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	relay.Routes().ServeHTTP(rec, req)
	return rec
}

func TestTripHandlerSplicesFares(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamTripDoc))
	}))
	defer upstream.Close()

	relay := newTestRelay(upstream.URL)
	rec := doRelayRequest(t, relay,
		"/v1/tp/trip?outputFormat=rapidJSON&coordOutputFormat=EPSG:4326&type_origin=any",
		"apikey test-credential")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "apikey test-credential", gotAuth)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	// Fields outside journeys survive the splice untouched.
	serverInfo, ok := doc["serverInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EFA 10", serverInfo["controllerVersion"])
	assert.Equal(t, 312.5, serverInfo["calcTime"])

	journeys, ok := doc["journeys"].([]any)
	require.True(t, ok)
	require.Len(t, journeys, 1)
	journey := journeys[0].(map[string]any)

	// Journey fields and legs survive too.
	assert.Equal(t, false, journey["isAdditional"])
	legs := journey["legs"].([]any)
	require.Len(t, legs, 1)
	assert.Equal(t, 1700.0, legs[0].(map[string]any)["distance"])

	fares, ok := journey["fares"].(map[string]any)
	require.True(t, ok)
	tickets, ok := fares["tickets"].([]any)
	require.True(t, ok)
	// One per-leg ticket plus one evaluation ticket for the single
	// category.
	require.Len(t, tickets, 2)

	legTicket := tickets[0].(map[string]any)
	assert.Equal(t, "ANYTRIP-EST-ADULT-RAIL-PEAK", legTicket["id"])
	assert.Equal(t, 4.00, legTicket["priceBrutto"])
	assert.Equal(t, "ADULT", legTicket["person"])

	evaluation := tickets[1].(map[string]any)
	properties := evaluation["properties"].(map[string]any)
	assert.Equal(t, "nswFareEnabled", properties["evaluationTicket"])
	assert.Equal(t, "4.00", properties["priceTotalFare"])
}

func TestTripHandlerLeavesResponseWithoutOutputParams(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamTripDoc))
	}))
	defer upstream.Close()

	relay := newTestRelay(upstream.URL)
	rec := doRelayRequest(t, relay, "/v1/tp/trip?type_origin=any", "")

	require.Equal(t, http.StatusOK, rec.Code)
	// No rapidJSON/EPSG:4326 parameters: byte-for-byte passthrough.
	assert.Equal(t, upstreamTripDoc, rec.Body.String())
}

func TestTripHandlerPassesThroughNonJSON(t *testing.T) {
	const page = "<html><body>maintenance</body></html>"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(page))
	}))
	defer upstream.Close()

	relay := newTestRelay(upstream.URL)
	rec := doRelayRequest(t, relay, "/v1/tp/trip?outputFormat=rapidJSON&coordOutputFormat=EPSG:4326", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, page, rec.Body.String())
}

func TestTripHandlerPassesThroughUpstreamErrors(t *testing.T) {
	const body = `{"error": "invalid api key"}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(body))
	}))
	defer upstream.Close()

	relay := newTestRelay(upstream.URL)
	rec := doRelayRequest(t, relay, "/v1/tp/trip?outputFormat=rapidJSON&coordOutputFormat=EPSG:4326", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, body, rec.Body.String())
}

func TestTripHandlerBadGateway(t *testing.T) {
	// Point at a server that is already gone.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	relay := newTestRelay(url)
	rec := doRelayRequest(t, relay, "/v1/tp/trip?outputFormat=rapidJSON&coordOutputFormat=EPSG:4326", "")

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var response struct {
		Code int    `json:"code"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, http.StatusBadGateway, response.Code)
	assert.NotEmpty(t, response.Text)
}

func TestTripHandlerDebugFlag(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamTripDoc))
	}))
	defer upstream.Close()

	relay := newTestRelay(upstream.URL)
	rec := doRelayRequest(t, relay,
		"/v1/tp/trip?outputFormat=rapidJSON&coordOutputFormat=EPSG:4326&anytripFareDebug=1", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.NotContains(t, doc, "journeys")

	debugJourneys, ok := doc["debugJourneys"].([]any)
	require.True(t, ok)
	require.Len(t, debugJourneys, 1)

	comparison := debugJourneys[0].(map[string]any)["ADULT"].(map[string]any)
	assert.Equal(t, "4.00", comparison["anytripTotalFare"])
}

func TestCacheKeyIsCredentialScoped(t *testing.T) {
	assert.NotEqual(t,
		cacheKey("apikey one", "a=1"),
		cacheKey("apikey two", "a=1"))
	assert.NotEqual(t,
		cacheKey("apikey one", "a=1"),
		cacheKey("apikey one", "a=2"))
	assert.Equal(t,
		cacheKey("apikey one", "a=1"),
		cacheKey("apikey one", "a=1"))
}
