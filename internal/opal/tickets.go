package opal

import (
	"fmt"
	"sort"
	"time"

	"opal.anytrip.au/internal/models"
)

// evaluationTicketFlag marks the synthetic aggregate ticket so
// downstream consumers can tell it from per-leg records. The value is
// what the upstream API itself emits.
const evaluationTicketFlag = "nswFareEnabled"

// centsToDollarString formats cents as a two-decimal dollar string, the
// representation the upstream ticket schema uses for money.
func centsToDollarString(cents int) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

// ticketValidity converts a bundle's validity window to the ticket's
// RFC3339 UTC bounds, shifted by the 04:00 Opal day boundary.
func ticketValidity(n *Network) (validFrom, validTo string) {
	from, err := time.ParseInLocation("20060102", n.Config.ValidFrom, n.Location())
	if err == nil {
		validFrom = from.Add(opalDayBoundary).UTC().Format(time.RFC3339)
	}
	to, err := time.ParseInLocation("20060102", n.Config.ValidTo, n.Location())
	if err == nil {
		validTo = to.Add(24*time.Hour + opalDayBoundary - time.Second).UTC().Format(time.RFC3339)
	}
	return validFrom, validTo
}

// legIndex returns the position of the leg among all submitted legs,
// NON_OPAL ones included, since upstream ticket indices count every leg
// of the journey.
func (c *Calculator) legIndex(leg *models.EfaLeg) int {
	for i, l := range c.allLegs {
		if l == leg {
			return i
		}
	}
	return -1
}

func peakLabel(isPeak bool) string {
	if isPeak {
		return "PEAK"
	}
	return "OFFPEAK"
}

// ticketForFare builds the upstream-schema ticket record for one fare
// component. Distance and pricing breakdown fields are schema
// placeholders the engine does not compute.
func (c *Calculator) ticketForFare(fare *FareComponent, group *segmentGroup) models.Ticket {
	totalCents := fare.TotalAdditionalFareCents + fare.TotalAdditionalSafCents

	var safDollars *string
	if fare.TotalAdditionalSafCents > 0 {
		s := centsToDollarString(fare.TotalAdditionalSafCents)
		safDollars = &s
	}

	categoryName := fare.Type
	if params, err := group.network.FareParameters(fare.Type); err == nil {
		categoryName = params.Name
	}

	validFrom, validTo := ticketValidity(group.network)
	legIdx := c.legIndex(fare.Leg)

	return models.Ticket{
		ID:                      fmt.Sprintf("ANYTRIP-EST-%s-%s-%s", fare.Type, fare.Mode, peakLabel(fare.TapOn.IsPeak)),
		Name:                    "Opal tariff",
		Comment:                 "",
		URL:                     "",
		Currency:                "AUD",
		PriceLevel:              "0",
		PriceBrutto:             float64(fare.TotalAdditionalFareCents) / 100,
		PriceNetto:              0,
		TaxPercent:              0,
		FromLeg:                 legIdx,
		ToLeg:                   legIdx,
		Net:                     "nsw",
		Person:                  fare.Type,
		TravellerClass:          "SECOND",
		TimeValidity:            "SINGLE",
		ValidMinutes:            -1,
		IsShortHaul:             "NO",
		ReturnsAllowed:          "NO",
		ValidForOneJourneyOnly:  "UNKNOWN",
		ValidForOneOperatorOnly: "UNKNOWN",
		NumberOfChanges:         len(group.legs),
		NameValidityArea:        "",
		ValidFrom:               validFrom,
		ValidTo:                 validTo,
		Properties: models.TicketProperties{
			RiderCategoryName:     categoryName,
			PriceStationAccessFee: safDollars,
			PriceTotalFare:        centsToDollarString(totalCents),
			TariffProductDefault:  []string{},
			TariffProductOption:   []string{},
		},
	}
}

// Tickets exports the journey's fares as upstream-schema ticket
// records: one per accepted leg per passenger category, followed by one
// evaluation ticket per category aggregating that category's per-leg
// tickets. Calling Tickets again without further AddLeg calls returns
// identical results.
func (c *Calculator) Tickets() []models.Ticket {
	type categoryTotal struct {
		firstTicket int
		fareCents   int
		safCents    int
		fromLeg     int
		toLeg       int
	}

	var tickets []models.Ticket
	totals := make(map[string]*categoryTotal)
	var order []string

	for _, group := range c.groups {
		fareTypes := make([]string, 0, len(group.fares))
		for fareType := range group.fares {
			fareTypes = append(fareTypes, fareType)
		}
		sort.Strings(fareTypes)

		for _, fareType := range fareTypes {
			for _, fare := range group.fares[fareType] {
				ticket := c.ticketForFare(fare, group)
				tickets = append(tickets, ticket)

				total, ok := totals[fareType]
				if !ok {
					total = &categoryTotal{
						firstTicket: len(tickets) - 1,
						fromLeg:     ticket.FromLeg,
						toLeg:       ticket.ToLeg,
					}
					totals[fareType] = total
					order = append(order, fareType)
				}
				total.fareCents += fare.TotalAdditionalFareCents
				total.safCents += fare.TotalAdditionalSafCents
				if ticket.FromLeg < total.fromLeg {
					total.fromLeg = ticket.FromLeg
				}
				if ticket.ToLeg > total.toLeg {
					total.toLeg = ticket.ToLeg
				}
			}
		}
	}

	for _, fareType := range order {
		total := totals[fareType]

		evaluation := tickets[total.firstTicket]
		evaluation.FromLeg = total.fromLeg
		evaluation.ToLeg = total.toLeg
		evaluation.PriceBrutto = float64(total.fareCents) / 100
		evaluation.Properties.EvaluationTicket = evaluationTicketFlag
		evaluation.Properties.PriceTotalFare = centsToDollarString(total.fareCents + total.safCents)
		if total.safCents > 0 {
			s := centsToDollarString(total.safCents)
			evaluation.Properties.PriceStationAccessFee = &s
		} else {
			evaluation.Properties.PriceStationAccessFee = nil
		}

		tickets = append(tickets, evaluation)
	}

	return tickets
}
