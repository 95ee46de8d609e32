package opal

import (
	"time"

	"opal.anytrip.au/internal/models"
)

// TransactionType is the kind of smartcard transaction a synthesized
// tap stands in for. The set mirrors the card system's transaction
// codes; several kinds exist on real cards but are never synthesized
// from trip-planner legs.
type TransactionType string

const (
	TransactionIssueNewCard TransactionType = "ISSUE_NEW_CARD"

	TransactionTapOnNewJourney         TransactionType = "TAP_ON_NEW_JOURNEY"
	TransactionTapOnIntramodalTransfer TransactionType = "TAP_ON_INTRAMODAL_TRANSFER"
	TransactionTapOnIntermodalTransfer TransactionType = "TAP_ON_INTERMODAL_TRANSFER"

	// F1 ferry taps are not synthesized by this implementation.
	TransactionTapOnF1NewJourney         TransactionType = "TAP_ON_F1_NEW_JOURNEY"
	TransactionTapOnF1IntramodalTransfer TransactionType = "TAP_ON_F1_INTRAMODAL_TRANSFER"
	TransactionTapOnF1IntermodalTransfer TransactionType = "TAP_ON_F1_INTERMODAL_TRANSFER"

	TransactionTapOffDistanceBased TransactionType = "TAP_OFF_DISTANCE_BASED"
	TransactionTapOffFlatRate      TransactionType = "TAP_OFF_FLAT_RATE"
	TransactionTapOffNoTapOff      TransactionType = "TAP_OFF_DEFAULT_NO_TAP_OFF"
	TransactionTapOffNoTapOn       TransactionType = "TAP_OFF_DEFAULT_NO_TAP_ON"

	TransactionTapOnReversal TransactionType = "TAP_ON_REVERSAL"
)

// IsIntramodalTransfer reports whether the transaction continues the
// current journey segment group.
func (t TransactionType) IsIntramodalTransfer() bool {
	return t == TransactionTapOnIntramodalTransfer || t == TransactionTapOnF1IntramodalTransfer
}

// IsIntermodalTransfer reports whether the transaction attracts the
// fixed intermodal transfer discount.
func (t TransactionType) IsIntermodalTransfer() bool {
	return t == TransactionTapOnIntermodalTransfer || t == TransactionTapOnF1IntermodalTransfer
}

// Tap is a synthesized smartcard reader event. Exactly one tap-on and
// one tap-off are produced per accepted leg.
type Tap struct {
	Transaction TransactionType `json:"transactionType"`
	TSN         string          `json:"tsn"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	Time        time.Time       `json:"time"`
	Mode        Mode            `json:"mode"`
	IsTapOn     bool            `json:"isTapOn"`
	// IsPeak is set on tap-ons only. For rail it may later be
	// overwritten with the peak flag of the segment group's first tap.
	IsPeak bool `json:"isPeakTapOn"`
}

// unknownTSN is used when a stop carries no resolvable transit stop
// number at any parent level.
const unknownTSN = "-1"

// StopTSN resolves a stop's canonical transit stop number by walking up
// the parent chain (at most two levels) to the first stop-typed entry
// carrying a global ID.
func StopTSN(stop *models.EfaStop) string {
	if stop.Type == "stop" && stop.IsGlobalID {
		return stop.ID
	}
	if p := stop.Parent; p != nil {
		if p.Type == "stop" && p.IsGlobalID {
			return p.ID
		}
		if pp := p.Parent; pp != nil && pp.Type == "stop" && pp.IsGlobalID {
			return pp.ID
		}
	}
	return unknownTSN
}

// stopCoord resolves a stop's coordinates, preferring the nearest
// platform-typed entry in the parent chain over the raw stop location.
func stopCoord(stop *models.EfaStop) (lat, lon float64) {
	if stop.Type == "platform" && stop.IsGlobalID {
		return stop.Lat(), stop.Lon()
	}
	if p := stop.Parent; p != nil {
		if p.Type == "platform" && p.IsGlobalID {
			return p.Lat(), p.Lon()
		}
		if pp := p.Parent; pp != nil && pp.Type == "platform" && pp.IsGlobalID {
			return pp.Lat(), pp.Lon()
		}
	}
	return stop.Lat(), stop.Lon()
}

// transferWindow is the maximum gap between a tap-off and the next
// tap-on for the two to count as one transfer-linked journey.
const transferWindow = time.Hour

// transferEligible reports whether the current leg continues the
// previous leg's journey: the gap between previous arrival and current
// departure is under the transfer window and both instants fall on the
// same Opal date (the first tap-on of a new Opal day always starts a
// new journey).
func (n *Network) transferEligible(prevLeg, currLeg *models.EfaLeg) bool {
	prevArrival := prevLeg.ArrivalTime()
	currDeparture := currLeg.DepartureTime()

	if currDeparture.Sub(prevArrival) >= transferWindow {
		return false
	}
	return n.Day(prevArrival).Date == n.Day(currDeparture).Date
}

// IsTapOnPeak classifies a tap-on as peak or off-peak. Discounted days
// are always off-peak. Rail tap-ons at outer-metro stations use the
// outer-metro peak windows; everything else uses the standard windows.
func (n *Network) IsTapOnPeak(tapOnTime time.Time, tsn string, mode Mode) bool {
	if n.Day(tapOnTime).IsDiscounted {
		return false
	}

	periods := n.TOU.PeakHours.MetroPeak
	if mode == ModeRail {
		for _, outer := range n.TOU.OuterMetroStations {
			if outer == tsn {
				periods = n.TOU.PeakHours.OuterMetroPeak
				break
			}
		}
	}

	local := tapOnTime.In(n.Location())
	minutes := local.Hour()*60 + local.Minute()

	return withinWindow(minutes, periods.AMPeak) || withinWindow(minutes, periods.PMPeak)
}

func withinWindow(minutes int, window [2]int) bool {
	return minutes >= window[0] && minutes < window[1]
}

// TapsForLeg synthesizes the tap-on/tap-off pair a card reader would
// record for a leg. The previous leg (nil for the journey's first)
// decides transfer eligibility; mode continuity decides whether an
// eligible transfer is intramodal or intermodal. Inputs are not
// mutated.
func (n *Network) TapsForLeg(prevLeg, currLeg *models.EfaLeg) (on, off *Tap) {
	currMode := ModeForLeg(currLeg)

	isTransfer := prevLeg != nil && n.transferEligible(prevLeg, currLeg)

	transaction := TransactionTapOnNewJourney
	if isTransfer {
		if ModeForLeg(prevLeg) == currMode {
			transaction = TransactionTapOnIntramodalTransfer
		} else {
			transaction = TransactionTapOnIntermodalTransfer
		}
	}

	originTSN := StopTSN(currLeg.Origin)
	destinationTSN := StopTSN(currLeg.Destination)

	tapOnTime := currLeg.DepartureTime()
	tapOffTime := currLeg.ArrivalTime()

	onLat, onLon := stopCoord(currLeg.Origin)
	offLat, offLon := stopCoord(currLeg.Destination)

	on = &Tap{
		Transaction: transaction,
		TSN:         originTSN,
		Lat:         onLat,
		Lon:         onLon,
		Time:        tapOnTime,
		Mode:        currMode,
		IsTapOn:     true,
		IsPeak:      n.IsTapOnPeak(tapOnTime, originTSN, currMode),
	}
	off = &Tap{
		Transaction: TransactionTapOffDistanceBased,
		TSN:         destinationTSN,
		Lat:         offLat,
		Lon:         offLon,
		Time:        tapOffTime,
		Mode:        currMode,
		IsTapOn:     false,
	}
	return on, off
}
