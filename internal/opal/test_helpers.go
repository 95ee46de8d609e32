package opal

import (
	"time"

	"opal.anytrip.au/internal/models"
)

// Shared fixtures for the engine tests. The fixture bundle is a
// miniature but internally consistent fare ruleset: two passenger
// categories, all four Opal modes, one SAF station with a pair
// override, a handful of rail and ferry distance entries, and
// metro/outer-metro peak windows.

const (
	testTSNCentral  = "200060"
	testTSNTownHall = "200070"
	testTSNStrath   = "212210"
	testTSNAirport  = "202020" // SAF-eligible
	testTSNOuter    = "277010" // outer metro
	testTSNWharfCQ  = "10101"
	testTSNWharfMan = "10102"
)

func newTestNetwork() *Network {
	adultBandsRail := []FareBand{
		{FromKM: 0, ToKM: 10, Peak: 400, OffPeak: 280, FouPeak: 300, FouOffPeak: 210},
		{FromKM: 10, ToKM: 20, Peak: 497, OffPeak: 347, FouPeak: 372, FouOffPeak: 260},
		{FromKM: 20, ToKM: 35, Peak: 571, OffPeak: 399, FouPeak: 428, FouOffPeak: 299},
		{FromKM: 35, ToKM: 65, Peak: 764, OffPeak: 534, FouPeak: 573, FouOffPeak: 400},
		{FromKM: 65, ToKM: 9999, Peak: 982, OffPeak: 687, FouPeak: 736, FouOffPeak: 515},
	}
	adultBandsBus := []FareBand{
		{FromKM: 0, ToKM: 3, Peak: 316, OffPeak: 221, FouPeak: 237, FouOffPeak: 165},
		{FromKM: 3, ToKM: 8, Peak: 365, OffPeak: 255, FouPeak: 273, FouOffPeak: 191},
		{FromKM: 8, ToKM: 9999, Peak: 420, OffPeak: 294, FouPeak: 315, FouOffPeak: 220},
	}
	adultBandsFerry := []FareBand{
		{FromKM: 0, ToKM: 9, Peak: 687, OffPeak: 481, FouPeak: 515, FouOffPeak: 360},
		{FromKM: 9, ToKM: 9999, Peak: 859, OffPeak: 601, FouPeak: 644, FouOffPeak: 450},
	}

	halve := func(bands []FareBand) []FareBand {
		out := make([]FareBand, len(bands))
		for i, b := range bands {
			out[i] = FareBand{
				FromKM: b.FromKM, ToKM: b.ToKM,
				Peak: b.Peak / 2, OffPeak: b.OffPeak / 2,
				FouPeak: b.FouPeak / 2, FouOffPeak: b.FouOffPeak / 2,
			}
		}
		return out
	}

	symmetric := func(pairs map[string]float64) map[string]float64 {
		out := make(map[string]float64, len(pairs)*2)
		for key, km := range pairs {
			out[key] = km
			var origin, destination string
			for i := 0; i < len(key); i++ {
				if key[i] == ':' {
					origin, destination = key[:i], key[i+1:]
					break
				}
			}
			out[destination+":"+origin] = km
		}
		return out
	}

	return &Network{
		Config: NetworkConfig{
			ValidFrom:      "20230701",
			ValidTo:        "20301231",
			TZ:             "Australia/Sydney",
			WeekendFareDOW: []int{6, 7},
		},
		FareTable: map[string]*FareParameters{
			"ADULT": {
				Name:               "Adult",
				Caps:               FareCaps{DailyCap: 1880, WeekendDailyCap: 940, WeeklyCap: 5000},
				IntermodalDiscount: 200,
				Saf: &SafRates{
					NonAlcRate: 1668,
					AlcRates:   map[string]int{testTSNAirport + ":" + testTSNCentral: 1450},
				},
				Modes: map[Mode][]FareBand{
					ModeRail:      adultBandsRail,
					ModeBus:       adultBandsBus,
					ModeLightRail: adultBandsBus,
					ModeFerry:     adultBandsFerry,
				},
			},
			"CHILD": {
				Name:               "Child/Youth",
				Caps:               FareCaps{DailyCap: 940, WeekendDailyCap: 470, WeeklyCap: 2500},
				IntermodalDiscount: 100,
				Modes: map[Mode][]FareBand{
					ModeRail:      halve(adultBandsRail),
					ModeBus:       halve(adultBandsBus),
					ModeLightRail: halve(adultBandsBus),
					ModeFerry:     halve(adultBandsFerry),
				},
			},
		},
		SafTSNs: []string{testTSNAirport},
		DistanceMatrix: map[Mode]map[string]float64{
			ModeRail: symmetric(map[string]float64{
				testTSNCentral + ":" + testTSNTownHall: 1.2,
				testTSNCentral + ":" + testTSNStrath:   12.3,
				testTSNCentral + ":" + testTSNAirport:  7.2,
				testTSNCentral + ":" + testTSNOuter:    68.5,
				testTSNTownHall + ":" + testTSNStrath:  13.5,
				testTSNTownHall + ":" + testTSNAirport: 8.4,
				testTSNStrath + ":" + testTSNAirport:   11.0,
				testTSNStrath + ":" + testTSNOuter:     56.2,
			}),
			ModeFerry: symmetric(map[string]float64{
				testTSNWharfCQ + ":" + testTSNWharfMan: 11.2,
			}),
		},
		TOU: TimeOfUse{
			PeakHours: PeakHours{
				MetroPeak:      PeakWindow{AMPeak: [2]int{390, 600}, PMPeak: [2]int{900, 1110}},
				OuterMetroPeak: PeakWindow{AMPeak: [2]int{360, 480}, PMPeak: [2]int{840, 1080}},
				FerryMetroPeak: PeakWindow{AMPeak: [2]int{390, 600}, PMPeak: [2]int{900, 1110}},
			},
			PublicHolidays:     []string{"20230925"},
			OuterMetroStations: []string{testTSNOuter},
		},
	}
}

func testNetworks() Networks {
	return Networks{newTestNetwork()}
}

// sydneyTime builds an instant in the fixture bundle's timezone.
func sydneyTime(year int, month time.Month, day, hour, min int) time.Time {
	loc, _ := time.LoadLocation("Australia/Sydney")
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

type testStopOpts struct {
	tsn      string
	lat, lon float64
	platform bool
}

// newTestStop builds a platform-typed stop nested under its station, the
// shape EFA returns for rail, or a flat global stop otherwise.
func newTestStop(opts testStopOpts) *models.EfaStop {
	if opts.platform {
		return &models.EfaStop{
			ID:         opts.tsn + "-P1",
			Type:       "platform",
			IsGlobalID: true,
			Coord:      []float64{opts.lat, opts.lon},
			Parent: &models.EfaStop{
				ID:         opts.tsn,
				Type:       "stop",
				IsGlobalID: true,
				Coord:      []float64{opts.lat, opts.lon},
			},
		}
	}
	return &models.EfaStop{
		ID:         opts.tsn,
		Type:       "stop",
		IsGlobalID: true,
		Coord:      []float64{opts.lat, opts.lon},
	}
}

type testLegOpts struct {
	origin, destination *models.EfaStop
	depart, arrive      time.Time
	productClass        int
	productIconID       int
	operatorID          string
}

func newTestLeg(opts testLegOpts) *models.EfaLeg {
	origin := *opts.origin
	origin.DepartureTimePlanned = opts.depart.UTC().Format(time.RFC3339)
	destination := *opts.destination
	destination.ArrivalTimePlanned = opts.arrive.UTC().Format(time.RFC3339)

	return &models.EfaLeg{
		Origin:      &origin,
		Destination: &destination,
		Transportation: models.EfaTransportation{
			ID: "test-service",
			Product: models.EfaProduct{
				Class:  opts.productClass,
				IconID: opts.productIconID,
			},
			Operator: models.EfaOperator{ID: opts.operatorID},
		},
	}
}

// newRailLeg builds an Opal rail leg (Sydney Trains operator code).
func newRailLeg(origin, destination *models.EfaStop, depart, arrive time.Time) *models.EfaLeg {
	return newTestLeg(testLegOpts{
		origin:       origin,
		destination:  destination,
		depart:       depart,
		arrive:       arrive,
		productClass: 1,
		operatorID:   "X000",
	})
}

// newBusLeg builds a regular Opal bus leg.
func newBusLeg(origin, destination *models.EfaStop, depart, arrive time.Time) *models.EfaLeg {
	return newTestLeg(testLegOpts{
		origin:        origin,
		destination:   destination,
		depart:        depart,
		arrive:        arrive,
		productClass:  5,
		productIconID: 5,
		operatorID:    "2436",
	})
}
