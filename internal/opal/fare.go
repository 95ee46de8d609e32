package opal

import "fmt"

// BaseFare returns the banded fare in cents for a passenger category,
// mode, distance and time-of-use flags. Bands are scanned in order and
// the first half-open [FROM_KM, TO_KM) interval containing the distance
// wins; a distance beyond every band is charged at the last band's rate.
// An unknown category or a mode missing from the category's table is a
// reference-data defect and is fatal.
func (n *Network) BaseFare(fareType string, mode Mode, distanceKm float64, isPeak, isFou bool) (int, error) {
	params, err := n.FareParameters(fareType)
	if err != nil {
		return 0, err
	}

	bands := params.Modes[mode]
	if len(bands) == 0 {
		return 0, fmt.Errorf("mode %s and fare type %s could not be found", mode, fareType)
	}

	for _, band := range bands {
		if distanceKm >= band.FromKM && distanceKm < band.ToKM {
			return band.rate(isPeak, isFou), nil
		}
	}

	// Beyond the last band: charge the ceiling rate.
	return bands[len(bands)-1].rate(isPeak, isFou), nil
}

// StationAccessFee returns the surcharge in cents for a journey segment
// whose start or end station is access-fee eligible: the pair-specific
// rate when the exact origin:destination pair has one, otherwise the
// category's flat rate. Segments touching no eligible station, and
// categories without a SAF table, are charged nothing.
func (n *Network) StationAccessFee(fareType, originTSN, destinationTSN string) (int, error) {
	params, err := n.FareParameters(fareType)
	if err != nil {
		return 0, err
	}

	eligible := false
	for _, tsn := range n.SafTSNs {
		if tsn == originTSN || tsn == destinationTSN {
			eligible = true
			break
		}
	}
	if !eligible || params.Saf == nil {
		return 0, nil
	}

	if rate, ok := params.Saf.AlcRates[originTSN+":"+destinationTSN]; ok {
		return rate, nil
	}
	return params.Saf.NonAlcRate, nil
}
