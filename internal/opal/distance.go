package opal

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// haversineKm returns the great-circle distance in kilometres between
// two points given in decimal degrees.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// MatrixDistance looks up the chargeable distance between two stops in
// the mode's precomputed stop-pair matrix. Matrices are symmetric and
// keyed "originTSN:destinationTSN". A missing entry is a reference-data
// defect and is fatal for the journey.
func (n *Network) MatrixDistance(mode Mode, originTSN, destinationTSN string) (float64, error) {
	matrix := n.DistanceMatrix[mode]
	if matrix == nil {
		return 0, fmt.Errorf("no %s distance matrix in network %s..%s", mode, n.Config.ValidFrom, n.Config.ValidTo)
	}
	distance, ok := matrix[originTSN+":"+destinationTSN]
	if !ok {
		return 0, fmt.Errorf("no %s distance entry for %s:%s", mode, originTSN, destinationTSN)
	}
	return distance, nil
}

// maxTapPairDistance finds the longest great-circle distance between
// any tap-on and any tap-off in the group, returning that distance and
// the peak flag of the tap-on that produced it. This models bus and
// light rail fares, which charge the longest point-to-point distance
// observed rather than the path length.
func maxTapPairDistance(taps []*Tap) (float64, bool, bool) {
	var (
		maxDistance float64
		peak        bool
		found       bool
	)
	for _, tapOn := range taps {
		if !tapOn.IsTapOn {
			continue
		}
		for _, tapOff := range taps {
			if tapOff.IsTapOn {
				continue
			}
			d := haversineKm(tapOn.Lat, tapOn.Lon, tapOff.Lat, tapOff.Lon)
			if !found || d > maxDistance {
				maxDistance = d
				peak = tapOn.IsPeak
				found = true
			}
		}
	}
	return maxDistance, peak, found
}
