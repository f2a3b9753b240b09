package road

import (
	"strconv"

	icore "traffic-ca/internal/core"
	"traffic-ca/pkg/core"
)

const defaultHistory = 240

// Road adapts a road and its engine to the viewer's core.Sim contract. The
// display buffer is a space-time diagram: row 0 is the current tick and older
// ticks scroll downwards.
type Road struct {
	cfg     Config
	history int
	seed    int64

	rng    *core.RNG
	engine *Engine
	state  *State
	tick   int
	stats  StepStats
	err    error

	display []uint8
}

// NewRoad returns a Road keeping the given number of ticks of history.
func NewRoad(cfg Config, history int) *Road {
	if history <= 0 {
		history = defaultHistory
	}
	r := &Road{cfg: cfg, history: history}
	if cfg.Length > 0 {
		r.display = make([]uint8, cfg.Length*history)
	}
	return r
}

// Name returns the simulation identifier.
func (r *Road) Name() string { return r.cfg.Name }

// Size returns the display dimensions: road length by history depth.
func (r *Road) Size() icore.Size { return icore.Size{W: r.cfg.Length, H: r.history} }

// Cells exposes the display buffer. 0 is empty, otherwise speed+1.
func (r *Road) Cells() []uint8 { return r.display }

// Config returns the road parameters.
func (r *Road) Config() Config { return r.cfg }

// State exposes the live occupancy.
func (r *Road) State() *State { return r.state }

// Tick returns the number of ticks applied since the last Reset.
func (r *Road) Tick() int { return r.tick }

// LastStats returns the statistics of the most recent tick.
func (r *Road) LastStats() StepStats { return r.stats }

// Err reports why the last Reset could not populate the road.
func (r *Road) Err() error { return r.err }

// Reset places a fresh set of stopped cars using the given seed.
func (r *Road) Reset(seed int64) {
	r.seed = seed
	r.rng = core.NewRNG(seed)
	r.engine = NewEngine(r.cfg, r.rng)
	r.tick = 0
	r.stats = StepStats{}
	for i := range r.display {
		r.display[i] = 0
	}
	st, err := Generate(r.cfg, r.rng, 0)
	r.err = err
	if err != nil {
		r.state = NewState(max(r.cfg.Length, 0))
		return
	}
	r.state = st
	r.paintRow()
}

// Step applies one tick and scrolls the history.
func (r *Road) Step() {
	if r.state == nil || r.cfg.Length <= 0 {
		return
	}
	r.stats = r.engine.Step(r.state)
	r.tick++
	w := r.cfg.Length
	copy(r.display[w:], r.display[:w*(r.history-1)])
	r.paintRow()
}

func (r *Road) paintRow() {
	for i, v := range r.state.cells {
		if v == Empty {
			r.display[i] = 0
			continue
		}
		r.display[i] = uint8(min(v+1, 255))
	}
}

// Parameters exposes the road configuration for display.
func (r *Road) Parameters() icore.ParameterSnapshot {
	return r.cfg.Parameters()
}

// Parameters describes the configuration as a parameter snapshot.
func (c Config) Parameters() icore.ParameterSnapshot {
	return icore.ParameterSnapshot{Groups: []icore.ParameterGroup{
		{
			Name: "Road",
			Params: []icore.Parameter{
				{Key: "name", Label: "Name", Type: icore.ParamTypeString, Value: c.Name},
				{Key: "length", Label: "Length", Type: icore.ParamTypeInt, Value: strconv.Itoa(c.Length)},
				{Key: "closed", Label: "Closed loop", Type: icore.ParamTypeBool, Value: strconv.FormatBool(c.ClosedLoop)},
				{Key: "boundary", Label: "Boundary", Type: icore.ParamTypeString, Value: c.Boundary.String()},
			},
		},
		{
			Name: "Traffic",
			Params: []icore.Parameter{
				{Key: "limit", Label: "Speed limit", Type: icore.ParamTypeInt, Value: strconv.Itoa(c.SpeedLimit)},
				{Key: "density", Label: "Density", Type: icore.ParamTypeFloat, Value: strconv.FormatFloat(c.Density, 'f', -1, 64)},
				{Key: "slow", Label: "Slow probability", Type: icore.ParamTypeFloat, Value: strconv.FormatFloat(c.SlowProbability, 'f', -1, 64)},
			},
		},
	}}
}

func init() {
	icore.Register("road", func(cfg map[string]string) icore.Sim {
		c := FromMap(cfg)
		history := defaultHistory
		if v, ok := cfg["history"]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				history = parsed
			}
		}
		return NewRoad(c, history)
	})
}
