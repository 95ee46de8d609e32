package opal

import (
	"fmt"
	"sort"
	"time"
)

// NetworkConfig scopes a network bundle to a validity window. VALID_FROM
// and VALID_TO are inclusive YYYYMMDD strings evaluated as Opal dates in
// the bundle's timezone.
type NetworkConfig struct {
	ValidFrom      string `json:"VALID_FROM"`
	ValidTo        string `json:"VALID_TO"`
	TZ             string `json:"TZ"`
	WeekendFareDOW []int  `json:"WEEKEND_FARE_DOW"`
}

// FareBand is one distance band of a fare table. The band matches a
// distance d when FROM_KM <= d < TO_KM. All rates are in cents.
type FareBand struct {
	FromKM     float64 `json:"FROM_KM"`
	ToKM       float64 `json:"TO_KM"`
	Peak       int     `json:"PEAK"`
	OffPeak    int     `json:"OFFPEAK"`
	FouPeak    int     `json:"FOU_PEAK"`
	FouOffPeak int     `json:"FOU_OFFPEAK"`
}

// rate selects the band's rate cell for the peak and frequency-of-use
// flags.
func (b FareBand) rate(isPeak, isFou bool) int {
	switch {
	case isFou && isPeak:
		return b.FouPeak
	case isFou:
		return b.FouOffPeak
	case isPeak:
		return b.Peak
	default:
		return b.OffPeak
	}
}

// SafRates holds the station access fee rates for one passenger
// category. ALC_RATES carries pair-specific override rates keyed
// "originTSN:destinationTSN"; NON_ALC_RATE applies to every other pair
// touching an access-fee station.
type SafRates struct {
	NonAlcRate int            `json:"NON_ALC_RATE"`
	AlcRates   map[string]int `json:"ALC_RATES"`
}

// FareCaps holds the fare caps for one passenger category, in cents.
type FareCaps struct {
	DailyCap        int `json:"DAILY_CAP"`
	WeekendDailyCap int `json:"WEEKEND_DAILY_CAP"`
	WeeklyCap       int `json:"WEEKLY_CAP"`
}

// FareParameters is the fare table for one passenger category. Modes is
// keyed by Mode and holds the category's distance bands in ascending
// order; band order is load-bearing, the first matching band wins.
type FareParameters struct {
	Name               string              `json:"NAME"`
	Caps               FareCaps            `json:"CAPS"`
	IntermodalDiscount int                 `json:"INTERMODAL_DISCOUNT"`
	Saf                *SafRates           `json:"SAF"`
	Modes              map[Mode][]FareBand `json:"MODES"`
}

// PeakWindow is an AM and PM peak period, each expressed as minutes
// since local midnight with an inclusive start and exclusive end.
type PeakWindow struct {
	AMPeak [2]int `json:"AM_PEAK"`
	PMPeak [2]int `json:"PM_PEAK"`
}

// PeakHours holds the peak window sets. FERRY_METRO_PEAK appears in
// generated datasets but is not selected by the fare rules; it is kept
// so datasets round-trip.
type PeakHours struct {
	MetroPeak      PeakWindow `json:"METRO_PEAK"`
	OuterMetroPeak PeakWindow `json:"OUTER_METRO_PEAK"`
	FerryMetroPeak PeakWindow `json:"FERRY_METRO_PEAK"`
}

// TimeOfUse holds the time-of-use reference data of a bundle.
type TimeOfUse struct {
	PeakHours          PeakHours `json:"PEAK_HOURS"`
	PublicHolidays     []string  `json:"PUBLIC_HOLIDAYS"`
	OuterMetroStations []string  `json:"OUTER_METRO_STATIONS"`
}

// Network is one versioned fare reference bundle: the complete ruleset
// valid over its configured window. Bundles are loaded once at process
// start and never mutated.
type Network struct {
	Config         NetworkConfig               `json:"CONFIG"`
	FareTable      map[string]*FareParameters  `json:"FARE_TABLE"`
	SafTSNs        []string                    `json:"SAF_TSN"`
	DistanceMatrix map[Mode]map[string]float64 `json:"DISTANCE_MATRIX"`
	TOU            TimeOfUse                   `json:"TOU"`

	loc *time.Location
}

// Location returns the bundle's timezone. An unresolvable TZ falls back
// to UTC; Validate surfaces that as a load error first.
func (n *Network) Location() *time.Location {
	if n.loc == nil {
		loc, err := time.LoadLocation(n.Config.TZ)
		if err != nil {
			loc = time.UTC
		}
		n.loc = loc
	}
	return n.loc
}

// Validate checks the bundle for configuration defects that would
// otherwise surface mid-journey as calculation errors.
func (n *Network) Validate() error {
	if _, err := time.LoadLocation(n.Config.TZ); err != nil {
		return fmt.Errorf("invalid TZ %q: %w", n.Config.TZ, err)
	}
	if len(n.Config.ValidFrom) != 8 || len(n.Config.ValidTo) != 8 {
		return fmt.Errorf("validity window %q..%q is not YYYYMMDD", n.Config.ValidFrom, n.Config.ValidTo)
	}
	if n.Config.ValidFrom > n.Config.ValidTo {
		return fmt.Errorf("VALID_FROM %s is after VALID_TO %s", n.Config.ValidFrom, n.Config.ValidTo)
	}
	if len(n.FareTable) == 0 {
		return fmt.Errorf("bundle %s..%s has an empty fare table", n.Config.ValidFrom, n.Config.ValidTo)
	}
	for fareType, params := range n.FareTable {
		for mode, bands := range params.Modes {
			for i, band := range bands {
				if band.FromKM > band.ToKM {
					return fmt.Errorf("fare table %s/%s band %d: FROM_KM %v exceeds TO_KM %v", fareType, mode, i, band.FromKM, band.ToKM)
				}
			}
		}
	}
	return nil
}

// FareTypes returns the bundle's passenger categories in a stable
// order, so repeated calculator runs are bit-identical.
func (n *Network) FareTypes() []string {
	types := make([]string, 0, len(n.FareTable))
	for fareType := range n.FareTable {
		types = append(types, fareType)
	}
	sort.Strings(types)
	return types
}

// FareParameters returns the fare table for a passenger category. An
// unknown category is a reference-data defect and is fatal.
func (n *Network) FareParameters(fareType string) (*FareParameters, error) {
	params := n.FareTable[fareType]
	if params == nil {
		return nil, fmt.Errorf("fare type %s could not be found", fareType)
	}
	return params, nil
}

// Networks is the time-ordered list of reference bundles, earliest
// first.
type Networks []*Network

// ForTime returns the bundle whose validity window covers the instant,
// evaluated on the Opal-day calendar of each candidate. Exactly one
// bundle should cover any supported instant; if none does, the latest
// bundle is used so the resolver is total.
func (ns Networks) ForTime(t time.Time) *Network {
	for _, n := range ns {
		date := n.Day(t).Date
		if date >= n.Config.ValidFrom && date <= n.Config.ValidTo {
			return n
		}
	}
	if len(ns) == 0 {
		return nil
	}
	return ns[len(ns)-1]
}
