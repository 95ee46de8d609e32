package models

import "time"

// EfaStop is the partial view of an EFA rapidJSON stop that fare
// calculation needs. Stops nest: a platform points at its station via
// Parent, which may itself point at a higher-level grouping. The full
// upstream object carries many more fields; the relay never re-serializes
// these structs, so dropping them here is safe.
type EfaStop struct {
	ID         string    `json:"id"`
	Parent     *EfaStop  `json:"parent,omitempty"`
	Type       string    `json:"type"`
	Coord      []float64 `json:"coord"`
	IsGlobalID bool      `json:"isGlobalId"`

	DepartureTimePlanned   string `json:"departureTimePlanned,omitempty"`
	DepartureTimeEstimated string `json:"departureTimeEstimated,omitempty"`
	ArrivalTimePlanned     string `json:"arrivalTimePlanned,omitempty"`
	ArrivalTimeEstimated   string `json:"arrivalTimeEstimated,omitempty"`
}

// EfaProduct describes the product class of a transportation, e.g.
// class 1 is a train and class 5 is a bus.
type EfaProduct struct {
	Class  int    `json:"class"`
	Name   string `json:"name"`
	IconID int    `json:"iconId"`
}

type EfaOperator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EfaTransportation struct {
	ID               string      `json:"id"`
	Number           string      `json:"number"`
	DisassembledName string      `json:"disassembledName"`
	IconID           int         `json:"iconId"`
	Product          EfaProduct  `json:"product"`
	Operator         EfaOperator `json:"operator"`
}

// EfaLeg is one directed movement segment of a journey. Legs are
// immutable once received; the engine only reads from them.
type EfaLeg struct {
	Origin         *EfaStop          `json:"origin"`
	Destination    *EfaStop          `json:"destination"`
	Transportation EfaTransportation `json:"transportation"`
}

// EfaJourney is the partial view of one upstream journey.
type EfaJourney struct {
	Legs []*EfaLeg `json:"legs"`
}

// EfaTripResponse is the partial view of an upstream trip response.
type EfaTripResponse struct {
	Journeys []EfaJourney `json:"journeys"`
}

// parseEfaTime parses an EFA timestamp. EFA emits RFC3339 with a
// trailing Z (UTC); an unparsable value yields the zero time.
func parseEfaTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DepartureTime returns the departure time of the leg's origin, with the
// estimated time taking precedence over the planned one.
func (l *EfaLeg) DepartureTime() time.Time {
	if l.Origin.DepartureTimeEstimated != "" {
		return parseEfaTime(l.Origin.DepartureTimeEstimated)
	}
	return parseEfaTime(l.Origin.DepartureTimePlanned)
}

// ArrivalTime returns the arrival time at the leg's destination, with the
// estimated time taking precedence over the planned one.
func (l *EfaLeg) ArrivalTime() time.Time {
	if l.Destination.ArrivalTimeEstimated != "" {
		return parseEfaTime(l.Destination.ArrivalTimeEstimated)
	}
	return parseEfaTime(l.Destination.ArrivalTimePlanned)
}

// Lat returns the stop's latitude. EFA coordinates arrive as
// [lat, lon] when coordOutputFormat=EPSG:4326 is requested.
func (s *EfaStop) Lat() float64 {
	if len(s.Coord) < 2 {
		return 0
	}
	return s.Coord[0]
}

// Lon returns the stop's longitude.
func (s *EfaStop) Lon() float64 {
	if len(s.Coord) < 2 {
		return 0
	}
	return s.Coord[1]
}
