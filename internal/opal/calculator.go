package opal

import (
	"fmt"

	"opal.anytrip.au/internal/models"
)

// FareBreakdown is the component-level breakdown of one leg's fare, in
// cents. Discounts are zero or negative; the complex adjustment absorbs
// corrections (clamped negative fares, retained fare bands) that are
// not real discounts.
type FareBreakdown struct {
	BaseFareCents           int `json:"baseFareCents"`
	FouDiscountCents        int `json:"fouDiscountCents"`
	IntramodalDiscountCents int `json:"intramodalDiscountCents"`
	OffPeakDiscountCents    int `json:"offPeakDiscountCents"`
	IntermodalDiscountCents int `json:"intermodalDiscountCents"`
	DailyCapDiscountCents   int `json:"dailyCapDiscountCents"`
	ComplexAdjustmentCents  int `json:"complexAdjustmentCents"`
	StationAccessFeeCents   int `json:"stationAccessFeeCents"`
}

// FareComponent is the fare calculation result for one accepted leg,
// within its journey segment group, for one passenger category.
//
// TotalAdditionalFareCents is this leg's marginal contribution;
// TotalFareCents is the group's running total after this leg. The SAF
// totals follow the same convention but are accounted outside the
// daily cap.
type FareComponent struct {
	Type     string  `json:"type"`
	TapOn    *Tap    `json:"tapOn"`
	TapOff   *Tap    `json:"tapOff"`
	Mode     Mode    `json:"mode"`
	Distance float64 `json:"distance"`

	Components FareBreakdown `json:"components"`

	TotalAdditionalFareCents int `json:"totalAdditionalFareCents"`
	TotalFareCents           int `json:"totalFareCents"`

	TotalAdditionalSafCents int `json:"totalAdditionalSafCents"`
	TotalSafCents           int `json:"totalSafCents"`

	Leg *models.EfaLeg `json:"-"`
}

// segmentGroup is one intramodal journey segment: an ordered run of
// same-mode, transfer-linked legs with its accumulated taps and
// per-category fares. Groups are append-only; once a group stops being
// current it is never touched again.
type segmentGroup struct {
	mode    Mode
	day     Day
	network *Network

	legs  []*models.EfaLeg
	taps  []*Tap
	fares map[string][]*FareComponent
}

// fareTotals sums the group's already-recorded marginal fare and SAF
// contributions for a category.
func (g *segmentGroup) fareTotals(fareType string) (fareCents, safCents int) {
	for _, fare := range g.fares[fareType] {
		fareCents += fare.TotalAdditionalFareCents
		safCents += fare.TotalAdditionalSafCents
	}
	return fareCents, safCents
}

// Calculator recomputes the Opal fare for one simulated journey. Legs
// are submitted in chronological order via AddLeg; each submission
// fully recomputes the current segment's fare for every passenger
// category before returning. A calculator holds all derived state for
// its journey and must not be shared across journeys or goroutines.
type Calculator struct {
	networks Networks

	allLegs []*models.EfaLeg
	legs    []*models.EfaLeg
	taps    []*Tap

	groups  []*segmentGroup
	current int

	legFares map[string][]*FareComponent
}

// NewCalculator returns a calculator over the injected reference
// dataset. The dataset is shared and read-only; all journey state is
// owned by the returned instance.
func NewCalculator(networks Networks) *Calculator {
	return &Calculator{
		networks: networks,
		current:  -1,
		legFares: make(map[string][]*FareComponent),
	}
}

// AddLeg ingests the journey's next leg: classifies it, synthesizes its
// taps, extends or creates the current journey segment group, and
// recomputes the segment's fare for every passenger category. Legs
// classified NON_OPAL are accepted and skipped: they produce no taps,
// no group mutation, and no fare. Errors are reference-data defects and
// poison the whole journey; callers should discard the calculator.
func (c *Calculator) AddLeg(leg *models.EfaLeg) error {
	network := c.networks.ForTime(leg.DepartureTime())
	if network == nil {
		return fmt.Errorf("no network bundles configured")
	}

	c.allLegs = append(c.allLegs, leg)

	var prevLeg *models.EfaLeg
	if len(c.legs) > 0 {
		prevLeg = c.legs[len(c.legs)-1]
	}

	tapOn, tapOff := network.TapsForLeg(prevLeg, leg)
	if tapOn.Mode == ModeNonOpal {
		return nil
	}

	c.legs = append(c.legs, leg)
	c.taps = append(c.taps, tapOn, tapOff)

	// A tap-on that is not an intramodal transfer closes the current
	// group and opens a new one.
	if c.current < 0 || !tapOn.Transaction.IsIntramodalTransfer() {
		c.groups = append(c.groups, &segmentGroup{
			mode:    tapOn.Mode,
			day:     network.Day(tapOn.Time),
			network: network,
			fares:   make(map[string][]*FareComponent),
		})
		c.current = len(c.groups) - 1
	}

	group := c.groups[c.current]
	group.legs = append(group.legs, leg)
	group.taps = append(group.taps, tapOn, tapOff)

	for _, fareType := range network.FareTypes() {
		fare, err := c.priceLeg(network, group, fareType, leg, tapOn, tapOff)
		if err != nil {
			return fmt.Errorf("pricing leg %d for %s: %w", len(c.allLegs)-1, fareType, err)
		}
		group.fares[fareType] = append(group.fares[fareType], fare)
		c.legFares[fareType] = append(c.legFares[fareType], fare)
	}
	return nil
}

// priceLeg computes one passenger category's fare component for the leg
// just appended to the group. The group is re-priced end to end: the
// intramodal discount backs out everything the group has already been
// charged, so the marginal fare is the delta between the group's new
// and previous totals.
func (c *Calculator) priceLeg(network *Network, group *segmentGroup, fareType string, leg *models.EfaLeg, tapOn, tapOff *Tap) (*FareComponent, error) {
	params, err := network.FareParameters(fareType)
	if err != nil {
		return nil, err
	}

	groupFareCents, groupSafCents := group.fareTotals(fareType)

	intermodalDiscountCents := 0
	if group.taps[0].Transaction.IsIntermodalTransfer() {
		intermodalDiscountCents = -params.IntermodalDiscount
	}

	usePeakFare := tapOn.IsPeak
	permitNegativeAdditionalFare := false
	retainHighestFareBand := true

	stationAccessFeeCents := 0
	var fareDistance float64

	switch group.mode {
	case ModeRail, ModeFerry:
		// No tap-out at interchanges: the chargeable distance runs from
		// the group's first origin to its last destination.
		originTSN := StopTSN(group.legs[0].Origin)
		destinationTSN := StopTSN(group.legs[len(group.legs)-1].Destination)

		fareDistance, err = network.MatrixDistance(group.mode, originTSN, destinationTSN)
		if err != nil {
			return nil, err
		}

		stationAccessFeeCents, err = network.StationAccessFee(fareType, originTSN, destinationTSN)
		if err != nil {
			return nil, err
		}

		if group.mode == ModeRail {
			// A transfer inside a rail group does not re-evaluate peak:
			// the virtual tap-on inherits the peak status of the
			// group's first tap, and the group may legitimately get
			// cheaper as it extends (end-to-end distance pricing).
			usePeakFare = group.taps[0].IsPeak
			tapOn.IsPeak = group.taps[0].IsPeak

			permitNegativeAdditionalFare = true
			retainHighestFareBand = false
		}
	default:
		var found bool
		fareDistance, usePeakFare, found = maxTapPairDistance(group.taps)
		if !found {
			return nil, fmt.Errorf("could not calculate fare distance")
		}
	}

	// The forced-peak fare is the reference baseline; the actual fare
	// at the segment's peak flag differs by the off-peak discount.
	baseFareCents, err := network.BaseFare(fareType, group.mode, fareDistance, true, false)
	if err != nil {
		return nil, err
	}
	contextFareCents, err := network.BaseFare(fareType, group.mode, fareDistance, usePeakFare, false)
	if err != nil {
		return nil, err
	}
	offPeakDiscountCents := contextFareCents - baseFareCents

	// Re-pricing the whole group: back out what it was already charged.
	intramodalDiscountCents := -groupFareCents

	fare := &FareComponent{
		Type:     fareType,
		TapOn:    tapOn,
		TapOff:   tapOff,
		Mode:     group.mode,
		Distance: fareDistance,
		Components: FareBreakdown{
			BaseFareCents:           baseFareCents,
			FouDiscountCents:        0,
			IntramodalDiscountCents: intramodalDiscountCents,
			OffPeakDiscountCents:    offPeakDiscountCents,
			IntermodalDiscountCents: intermodalDiscountCents,
			DailyCapDiscountCents:   0,
			ComplexAdjustmentCents:  0,
			StationAccessFeeCents:   stationAccessFeeCents,
		},
		TotalAdditionalSafCents: stationAccessFeeCents - groupSafCents,
		Leg:                     leg,
	}
	fare.TotalAdditionalFareCents = baseFareCents +
		fare.Components.FouDiscountCents +
		intramodalDiscountCents +
		offPeakDiscountCents +
		intermodalDiscountCents

	// A continuing leg may not refund fare already charged, except on
	// rail; the clamp is recorded as an adjustment, not a discount.
	if fare.TotalAdditionalFareCents < 0 && !permitNegativeAdditionalFare {
		fare.Components.ComplexAdjustmentCents += -fare.TotalAdditionalFareCents
		fare.TotalAdditionalFareCents = 0
	}

	// Non-rail groups never get cheaper than their highest total so
	// far: the fare band reached within a group is retained.
	if retainHighestFareBand && len(group.fares[fareType]) > 0 {
		maxPreviousFare := 0
		for i, prev := range group.fares[fareType] {
			if i == 0 || prev.TotalFareCents > maxPreviousFare {
				maxPreviousFare = prev.TotalFareCents
			}
		}
		if fare.TotalAdditionalFareCents+groupFareCents < maxPreviousFare {
			correction := maxPreviousFare - (fare.TotalAdditionalFareCents + groupFareCents)
			fare.Components.ComplexAdjustmentCents += correction
			fare.TotalAdditionalFareCents += correction
		}
	}

	// Daily cap, applied last and against fare only (not SAF): the
	// category's running total across all groups sharing this group's
	// Opal date is clamped exactly at the cap.
	dailyCap, err := network.DailyCap(fareType, tapOn.Time)
	if err != nil {
		return nil, err
	}
	fareTodayBeforeLeg := 0
	for _, g := range c.groups {
		if g.day.Date != group.day.Date {
			continue
		}
		total, _ := g.fareTotals(fareType)
		fareTodayBeforeLeg += total
	}
	if fareToday := fareTodayBeforeLeg + fare.TotalAdditionalFareCents; fareToday > dailyCap {
		correction := dailyCap - fareToday
		fare.Components.DailyCapDiscountCents += correction
		fare.TotalAdditionalFareCents += correction
	}

	fare.TotalFareCents = fare.TotalAdditionalFareCents + groupFareCents
	fare.TotalSafCents = fare.TotalAdditionalSafCents + groupSafCents

	return fare, nil
}

// FareComponents returns the per-category fare components recorded so
// far, in leg order. The slices are copies; the components they point
// at are the calculator's own records and must not be mutated.
func (c *Calculator) FareComponents() map[string][]*FareComponent {
	out := make(map[string][]*FareComponent, len(c.legFares))
	for fareType, fares := range c.legFares {
		out[fareType] = append([]*FareComponent(nil), fares...)
	}
	return out
}
