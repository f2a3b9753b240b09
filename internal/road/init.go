package road

import (
	"fmt"

	"traffic-ca/pkg/core"
)

// maxPlacementAttempts bounds rejection sampling. Valid configs finish far
// below it; hitting it means the state or the random source is broken.
func maxPlacementAttempts(length int) int {
	return 64*length + 1024
}

// Generate places floor(Length*Density) cars with startSpeed on uniformly
// random distinct cells of an otherwise empty road.
func Generate(cfg Config, rng core.Rand, startSpeed int) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if startSpeed < 0 || startSpeed > cfg.SpeedLimit {
		return nil, fmt.Errorf("%w: start speed %d outside [0,%d]", ErrInvalidConfig, startSpeed, cfg.SpeedLimit)
	}

	st := NewState(cfg.Length)
	target := cfg.TargetCars()
	limit := maxPlacementAttempts(cfg.Length)
	placed, attempts := 0, 0
	for placed < target {
		if attempts >= limit {
			return nil, fmt.Errorf("%w: placed %d of %d cars after %d draws", ErrCapacityExceeded, placed, target, attempts)
		}
		attempts++
		site := rng.IntN(cfg.Length)
		if _, occupied := st.At(site); occupied {
			continue
		}
		st.Place(site, startSpeed)
		placed++
	}
	return st, nil
}
