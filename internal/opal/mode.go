package opal

import "opal.anytrip.au/internal/models"

// Mode is the mode of transport a leg is charged as for Opal purposes.
// It is a closed set: every leg maps to exactly one of these.
type Mode string

const (
	ModeRail      Mode = "RAIL"
	ModeFerry     Mode = "FERRY"
	ModeLightRail Mode = "LIGHTRAIL"
	ModeBus       Mode = "BUS"
	ModeNonOpal   Mode = "NON_OPAL"
)

// Operator IDs for product class 1 services that run on the Opal
// network. Class 1 services from any other operator are regional or
// interstate trains and carry no Opal fare.
var opalRailOperators = map[string]bool{
	"X000":  true,
	"X0000": true,
	"x0001": true,
}

// Icon IDs for product class 5 services charged a regular Opal bus
// fare. Other icon IDs are school or replacement buses.
var opalBusIconIDs = map[int]bool{
	5:  true,
	15: true,
}

// isStocktonFerry reports whether the leg is the Stockton ferry, which
// is a ferry service charged as a bus fare.
func isStocktonFerry(leg *models.EfaLeg) bool {
	return leg.Transportation.Product.Class == 9 && leg.Transportation.Operator.ID == "3000"
}

// ModeForLeg classifies a trip-planner leg into the mode of transport
// used for Opal fare calculations. The rules are ordered: metro, Sydney
// Trains / NSW Trains intercity, ferries, light rail, then buses.
// Anything unmatched is NON_OPAL and takes no part in fare calculation.
func ModeForLeg(leg *models.EfaLeg) Mode {
	product := leg.Transportation.Product
	operator := leg.Transportation.Operator

	// Metro
	if product.Class == 2 {
		return ModeRail
	}

	// Sydney Trains and NSW Trains Intercity (Opal network)
	if product.Class == 1 && opalRailOperators[operator.ID] {
		return ModeRail
	}

	// Manly Fast Ferry
	if product.Class == 9 && operator.ID == "306" {
		return ModeFerry
	}

	// Sydney Ferries
	if product.Class == 9 && operator.ID == "SF" {
		return ModeFerry
	}

	// Light Rail
	if product.Class == 4 {
		return ModeLightRail
	}

	// Regular Opal bus, plus the Stockton ferry which is charged as a
	// bus fare.
	// TODO: handle school buses and replacement buses
	if (product.Class == 5 && opalBusIconIDs[product.IconID]) || isStocktonFerry(leg) {
		return ModeBus
	}

	return ModeNonOpal
}
