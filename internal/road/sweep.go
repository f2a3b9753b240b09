package road

import (
	"fmt"

	"traffic-ca/pkg/core"
)

// FlowSample is one point of the fundamental diagram.
type FlowSample struct {
	Density   float64
	Cars      int
	MeanFlow  float64 // cars crossing the end of the road per tick
	MeanSpeed float64 // averaged over the measured ticks
	Stopped   float64
}

// MeasureFlow generates a road at cfg.Density, discards warmup ticks and then
// averages flow and speed over the following ticks.
func MeasureFlow(cfg Config, seed int64, warmup, ticks int) (FlowSample, error) {
	if ticks <= 0 || warmup < 0 {
		return FlowSample{}, fmt.Errorf("%w: warmup %d, ticks %d", ErrInvalidConfig, warmup, ticks)
	}
	rng := core.NewRNG(seed)
	st, err := Generate(cfg, rng, 0)
	if err != nil {
		return FlowSample{}, err
	}
	eng := NewEngine(cfg, rng)
	for i := 0; i < warmup; i++ {
		eng.Step(st)
	}

	sample := FlowSample{Density: cfg.Density, Cars: st.CarCount()}
	var flow int
	var speed, stopped float64
	for i := 0; i < ticks; i++ {
		flow += eng.Step(st).Flow
		speed += MeanSpeed(st)
		stopped += StoppedFraction(st)
	}
	sample.MeanFlow = float64(flow) / float64(ticks)
	sample.MeanSpeed = speed / float64(ticks)
	sample.Stopped = stopped / float64(ticks)
	return sample, nil
}
