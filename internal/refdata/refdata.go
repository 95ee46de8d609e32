// Package refdata loads the versioned fare reference dataset consumed
// by the fare engine. The dataset is a JSON file of time-ordered
// network bundles produced offline; it is loaded once at process start
// and injected wherever fares are computed.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"

	"opal.anytrip.au/internal/opal"
)

// Load reads and validates a reference dataset file. Bundles must be
// ordered earliest first; the loader rejects empty datasets and bundles
// that fail their own validation so that configuration defects surface
// at startup rather than mid-journey.
func Load(path string) (opal.Networks, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reference dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a reference dataset from raw JSON.
func Parse(data []byte) (opal.Networks, error) {
	var networks opal.Networks
	if err := json.Unmarshal(data, &networks); err != nil {
		return nil, fmt.Errorf("decoding reference dataset: %w", err)
	}
	if len(networks) == 0 {
		return nil, fmt.Errorf("reference dataset contains no network bundles")
	}

	previousFrom := ""
	for i, network := range networks {
		if err := network.Validate(); err != nil {
			return nil, fmt.Errorf("network bundle %d: %w", i, err)
		}
		if network.Config.ValidFrom < previousFrom {
			return nil, fmt.Errorf("network bundle %d: bundles must be ordered by VALID_FROM", i)
		}
		previousFrom = network.Config.ValidFrom
	}
	return networks, nil
}
