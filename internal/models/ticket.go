package models

// TicketProperties is the properties block of an EFA ticket record.
// Field names and types mirror the upstream API so spliced tickets are
// indistinguishable from upstream-issued ones. The distance and pricing
// breakdown fields exist in the upstream schema but are not computed by
// the fare engine; they are emitted as zero placeholders.
type TicketProperties struct {
	RiderCategoryName     string   `json:"riderCategoryName"`
	PriceStationAccessFee *string  `json:"priceStationAccessFee,omitempty"`
	PriceTotalFare        string   `json:"priceTotalFare"`
	EvaluationTicket      string   `json:"evaluationTicket,omitempty"`
	DistExact             float64  `json:"distExact"`
	DistRounded           float64  `json:"distRounded"`
	PricePerKM            float64  `json:"pricePerKM"`
	PriceBasic            float64  `json:"priceBasic"`
	TariffProductDefault  []string `json:"tariffProductDefault"`
	TariffProductOption   []string `json:"tariffProductOption"`
}

// Ticket is one EFA-compatible ticket record. One is emitted per
// accepted leg per passenger category, plus one aggregate "evaluation"
// ticket per category covering the whole journey.
type Ticket struct {
	ID                      string           `json:"id"`
	Name                    string           `json:"name"`
	Comment                 string           `json:"comment"`
	URL                     string           `json:"URL"`
	Currency                string           `json:"currency"`
	PriceLevel              string           `json:"priceLevel"`
	PriceBrutto             float64          `json:"priceBrutto"`
	PriceNetto              float64          `json:"priceNetto"`
	TaxPercent              float64          `json:"taxPercent"`
	FromLeg                 int              `json:"fromLeg"`
	ToLeg                   int              `json:"toLeg"`
	Net                     string           `json:"net"`
	Person                  string           `json:"person"`
	TravellerClass          string           `json:"travellerClass"`
	TimeValidity            string           `json:"timeValidity"`
	ValidMinutes            int              `json:"validMinutes"`
	IsShortHaul             string           `json:"isShortHaul"`
	ReturnsAllowed          string           `json:"returnsAllowed"`
	ValidForOneJourneyOnly  string           `json:"validForOneJourneyOnly"`
	ValidForOneOperatorOnly string           `json:"validForOneOperatorOnly"`
	NumberOfChanges         int              `json:"numberOfChanges"`
	NameValidityArea        string           `json:"nameValidityArea"`
	ValidFrom               string           `json:"validFrom"`
	ValidTo                 string           `json:"validTo"`
	Properties              TicketProperties `json:"properties"`
}
